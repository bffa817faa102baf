package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxTimelineLimit caps the ?limit= a client may ask for.
const maxTimelineLimit = 100

type TimelineController struct {
	timeline  Timeline
	presenter *Presenter
}

func NewTimelineController(timeline Timeline, presenter *Presenter) *TimelineController {
	return &TimelineController{
		timeline:  timeline,
		presenter: presenter,
	}
}

// Timeline handles GET /timeline?cursor=&limit=
// Newest entries first; next_cursor continues after the last entry shown.
func (tc *TimelineController) Timeline(c *gin.Context) {
	page, err := tc.timeline.ListTimeline(parseLimit(c, maxTimelineLimit), c.Query("cursor"))
	if err != nil {
		tc.presenter.Fail(c, err, "")
		return
	}
	tc.presenter.Render(c, http.StatusOK, "timeline", gin.H{
		"Title":       "Timeline",
		"updates":     page.Updates,
		"next_cursor": page.NextCursor,
	})
}
