package settings

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/boothsync/internal/survey"
)

//go:embed profile.cue
var profileSchema string

// Profile is a partial configuration prepared ahead of an event. Nil fields
// leave the device value untouched.
type Profile struct {
	AdminPIN          *string  `json:"adminPin,omitempty"`
	StandID           *string  `json:"standId,omitempty"`
	SectorName        *string  `json:"sectorName,omitempty"`
	AvailableProducts []string `json:"availableProducts,omitempty"`
}

// Apply returns cfg with the profile's fields applied.
func (p Profile) Apply(cfg survey.AppConfig) survey.AppConfig {
	out := cfg.Clone()
	if p.AdminPIN != nil {
		out.AdminPIN = *p.AdminPIN
	}
	if p.StandID != nil {
		out.StandID = *p.StandID
	}
	if p.SectorName != nil {
		out.SectorName = SectorLabel(*p.SectorName)
	}
	if p.AvailableProducts != nil {
		out.AvailableProducts = append([]string(nil), p.AvailableProducts...)
	}
	return out
}

// LoadProfile reads and validates a booth profile file.
// Supported extensions: .cue, .json, .yaml, .yml.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data, path)
}

// ParseProfile validates data against the profile schema. The filename's
// extension selects the decoder.
func ParseProfile(data []byte, filename string) (Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(profileSchema, cue.Filename("profile.cue"))
	if err := schema.Err(); err != nil {
		return Profile{}, fmt.Errorf("compile profile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Profile"))

	var v cue.Value
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".cue", ".json":
		v = ctx.CompileBytes(data, cue.Filename(filename))
	case ".yaml", ".yml":
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Profile{}, fmt.Errorf("profile %s: %w", filename, err)
		}
		if m == nil {
			m = map[string]any{}
		}
		v = ctx.Encode(m)
	default:
		return Profile{}, fmt.Errorf("profile %s: unsupported extension %q", filename, ext)
	}
	if err := v.Err(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %s", filename, cueerrors.Details(err, nil))
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %s", filename, cueerrors.Details(err, nil))
	}

	var p Profile
	if err := unified.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("profile %s: decode: %w", filename, err)
	}
	return p, nil
}
