package commands

import (
	"github.com/ruapotato/Flick-sub004/compositor"
)

type HistoryRequest struct {
	Limit int  `json:"limit,omitempty"`
	Clear bool `json:"clear,omitempty"`
}

// HistoryCommand returns recent recognized gestures, newest first
func HistoryCommand(req HistoryRequest) *CommandResponse {
	var records []compositor.Record
	err := call(func(c *compositor.Compositor) {
		records = c.History(req.Limit)
		if req.Clear {
			c.ClearHistory()
		}
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	if records == nil {
		records = []compositor.Record{}
	}
	return NewSuccessResponse(map[string]interface{}{
		"gestures": records,
	})
}
