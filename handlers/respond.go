package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pagination is attached to paginated list responses.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Pages int64 `json:"pages"`
}

// envelope is the uniform response wrapper every endpoint returns, except
// the raw binary-fetch endpoints.
type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondPage(c *gin.Context, message string, data interface{}, p Pagination) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data, Pagination: &p})
}

func respondFail(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

// respondError surfaces the underlying failure message to the caller, per
// the unexpected-error contract.
func respondError(c *gin.Context, status int, message string, err error) {
	e := envelope{Success: false, Message: message}
	if err != nil {
		e.Error = err.Error()
	}
	c.JSON(status, e)
}
