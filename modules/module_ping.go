//go:build modules.ping || modules.all
// +build modules.ping modules.all

package modules

import (
	"github.com/chortlebot/chortle/modules/ping"
)

func init() {
	Add(&ping.Module{})
}
