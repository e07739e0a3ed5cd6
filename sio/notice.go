package sio

import (
	"encoding/json"
	"fmt"

	"github.com/Comcast/autostate/core"
)

// Notice reports a committed state.
type Notice struct {
	Owner   string     `json:"owner"`
	Manager string     `json:"manager,omitempty"`
	At      string     `json:"at"`
	State   core.State `json:"state"`
}

// NewNotice makes a timestamped Notice.
func NewNotice(owner, manager string, st core.State) *Notice {
	return &Notice{
		Owner:   owner,
		Manager: manager,
		At:      core.Timestamp(),
		State:   st,
	}
}

// JS renders its argument as JSON or as '%#v'.
func JS(x interface{}) string {
	if x == nil {
		return "null"
	}
	js, err := json.Marshal(&x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}
