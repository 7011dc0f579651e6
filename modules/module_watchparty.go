//go:build modules.watchparty || modules.all
// +build modules.watchparty modules.all

package modules

import (
	"github.com/chortlebot/chortle/modules/watchparty"
)

func init() {
	Add(&watchparty.Module{})
}
