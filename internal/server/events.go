package server

import (
	"io"

	"github.com/gin-gonic/gin"
)

// handleEvents streams catalog changes to a storefront as server-sent events.
func (s *Server) handleEvents(c *gin.Context) {
	ch, detach := s.deps.Stream.Subscribe()
	defer detach()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
