package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "headtrack"

// DeviceID derives a stable device name from the machine ID, falling back to
// the hostname.
func DeviceID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil && len(id) >= 12 {
		return appID + "-" + id[:12]
	}
	glog.V(1).Infof("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return appID
}
