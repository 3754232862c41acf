package snapshot

import (
	"os"

	"github.com/shirou/gopsutil/host"
	log "github.com/sirupsen/logrus"
)

// LocalCollectorInfo describes the machine running the tool. Failures to read
// host facts only leave fields empty.
func LocalCollectorInfo(toolVersion string) CollectorInfo {
	ci := CollectorInfo{ToolVersion: toolVersion}

	info, err := host.Info()
	if err != nil {
		log.Debugf("cannot get host info: %s", err)
		ci.Hostname, _ = os.Hostname()
		return ci
	}

	ci.Hostname = info.Hostname
	ci.OS = info.OS
	ci.Platform = info.Platform
	if info.PlatformVersion != "" {
		ci.Platform += " " + info.PlatformVersion
	}

	return ci
}
