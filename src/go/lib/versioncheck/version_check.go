package versioncheck

import (
	"runtime"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// MinGoVersion is the oldest Go runtime the tool supports.
	MinGoVersion = "1.18"
	// MinServerVersion is the first MongoDB release with $indexStats.
	MinServerVersion = "3.2.0"
)

// ErrVersionUnsupported is returned when a guard fails and was not bypassed.
var ErrVersionUnsupported = errors.New("version unsupported")

// CheckRuntime fails if the binary runs on a Go runtime older than MinGoVersion.
func CheckRuntime() error {
	return checkRuntime(runtime.Version(), MinGoVersion)
}

func checkRuntime(current, minimum string) error {
	log.Debugf("Go runtime %s, minimum %s", current, minimum)

	min, err := version.NewVersion(minimum)
	if err != nil {
		return errors.Wrapf(err, "invalid minimum version %q", minimum)
	}

	cur, err := version.NewVersion(strings.TrimPrefix(current, "go"))
	if err != nil {
		return errors.Wrapf(ErrVersionUnsupported, "cannot parse Go runtime version %q", current)
	}

	if cur.LessThan(min) {
		return errors.Wrapf(ErrVersionUnsupported, "Go %s or later is required, running %s", minimum, current)
	}

	return nil
}

// CheckServerVersion fails for MongoDB servers that cannot report index usage.
func CheckServerVersion(serverVersion string) error {
	return checkServerVersion(serverVersion, MinServerVersion)
}

func checkServerVersion(current, minimum string) error {
	min, err := semver.NewVersion(minimum)
	if err != nil {
		return errors.Wrapf(err, "invalid minimum version %q", minimum)
	}

	cur, err := semver.NewVersion(current)
	if err != nil {
		return errors.Wrapf(ErrVersionUnsupported, "cannot parse MongoDB version %q", current)
	}

	if cur.LessThan(min) {
		return errors.Wrapf(ErrVersionUnsupported, "MongoDB %s or later is required, server is %s", minimum, current)
	}

	return nil
}
