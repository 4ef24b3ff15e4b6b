package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// evaluate checks one assertion against the current device states.
func (h *Harness) evaluate(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertCount:
		ids, err := h.ids(ctx, a.Device)
		if err != nil {
			return err
		}
		if len(ids) != a.Count {
			return fmt.Errorf("device %s: expected %d records, got %d", a.Device, a.Count, len(ids))
		}

	case AssertPending:
		pending, err := h.nodes[a.Device].responses.PendingCount(ctx)
		if err != nil {
			return err
		}
		if pending != a.Count {
			return fmt.Errorf("device %s: expected %d pending, got %d", a.Device, a.Count, pending)
		}

	case AssertOrder:
		ids, err := h.ids(ctx, a.Device)
		if err != nil {
			return err
		}
		if strings.Join(ids, ",") != strings.Join(a.IDs, ",") {
			return fmt.Errorf("device %s: expected order %v, got %v", a.Device, a.IDs, ids)
		}

	case AssertSameSet:
		var first []string
		for i, d := range a.Devices {
			ids, err := h.ids(ctx, d)
			if err != nil {
				return err
			}
			sorted := append([]string(nil), ids...)
			sort.Strings(sorted)
			if i == 0 {
				first = sorted
				continue
			}
			if strings.Join(sorted, ",") != strings.Join(first, ",") {
				return fmt.Errorf("device %s holds %v, device %s holds %v", a.Devices[0], first, d, sorted)
			}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func (h *Harness) ids(ctx context.Context, deviceName string) ([]string, error) {
	rs, err := h.nodes[deviceName].responses.Responses(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.ID
	}
	return ids, nil
}
