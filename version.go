package gc

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"
)

// Version is this collector's ABI version: the shape of Config,
// Collector's exported methods, and Observer's contract. Bump the
// major component on any breaking change to those surfaces.
const Version = "1.0.0"

// RequireHost reports an error unless Version satisfies constraint,
// following the same semver-constraint compatibility check the
// teacher's package manager runs before resolving a dependency.
func RequireHost(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return err
	}

	v, err := semver.NewVersion(Version)
	if err != nil {
		return err
	}

	if !c.Check(v) {
		return fmt.Errorf("gc: version %s does not satisfy constraint %q", Version, constraint)
	}

	return nil
}
