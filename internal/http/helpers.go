package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/auth"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Flasher stores one-shot messages shown on the next rendered page.
type Flasher interface {
	AddFlash(r *http.Request, message string)
	PopFlashes(r *http.Request) []string
}

// Presenter answers a request either with an HTML page or with JSON. Pages are
// used when templates are loaded and the client did not ask for JSON.
type Presenter struct {
	html    bool
	flashes Flasher
}

func NewPresenter(html bool, flashes Flasher) *Presenter {
	return &Presenter{html: html, flashes: flashes}
}

func (p *Presenter) wantsHTML(c *gin.Context) bool {
	return p.html && !auth.WantsJSON(c)
}

func (p *Presenter) flash(c *gin.Context, message string) {
	if p.flashes != nil && message != "" {
		p.flashes.AddFlash(c.Request, message)
	}
}

// Render executes the named template with data, or writes data as JSON.
func (p *Presenter) Render(c *gin.Context, status int, name string, data gin.H) {
	if !p.wantsHTML(c) {
		c.JSON(status, data)
		return
	}

	page := gin.H{"Auth": GetAuthTemplateData(c)}
	for k, v := range data {
		page[k] = v
	}
	if p.flashes != nil {
		page["Flashes"] = p.flashes.PopFlashes(c.Request)
	}
	c.HTML(status, name, page)
}

// Done reports a completed action. Browsers get message as a flash and are
// redirected; JSON clients get status with the message and data.
func (p *Presenter) Done(c *gin.Context, status int, message, redirect string, data any) {
	if !p.wantsHTML(c) {
		c.JSON(status, SuccessResponse{Message: message, Data: data})
		return
	}
	p.flash(c, message)
	c.Redirect(http.StatusFound, redirect)
}

// Notice redirects a browser with a flash, or answers JSON clients with body.
func (p *Presenter) Notice(c *gin.Context, message, redirect string, body gin.H) {
	if !p.wantsHTML(c) {
		c.JSON(http.StatusOK, body)
		return
	}
	p.flash(c, message)
	c.Redirect(http.StatusFound, redirect)
}

// Fail maps err to a response. Browsers see the user-facing message as a flash
// on redirect, or on the error page when redirect is empty. Unexpected errors
// are logged with the request ID and never shown verbatim.
func (p *Presenter) Fail(c *gin.Context, err error, redirect string) {
	status := apperrors.HTTPStatus(err)
	message := apperrors.Message(err)
	requestID := GetRequestID(c)
	if status == http.StatusInternalServerError {
		log.Printf("[http] %s %s request_id=%s: %v", c.Request.Method, c.Request.URL.Path, requestID, err)
	}

	if !p.wantsHTML(c) {
		c.JSON(status, ErrorResponse{Error: message, RequestID: requestID})
		return
	}
	if redirect != "" {
		p.flash(c, message)
		c.Redirect(http.StatusFound, redirect)
		return
	}
	p.Render(c, status, "error", gin.H{"Title": "Error", "Error": message, "RequestID": requestID})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
func parseIDParam(c *gin.Context, paramName string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("invalid " + paramName)
	}
	return uint(id), nil
}

// parseRating reads an optional integer form field. Missing and malformed
// values both yield nil.
func parseRating(value string) *int {
	if value == "" {
		return nil
	}
	rating, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &rating
}

// parseLimit reads a positive page size from the query, 0 when absent.
func parseLimit(c *gin.Context, max int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		return 0
	}
	if limit > max {
		return max
	}
	return limit
}
