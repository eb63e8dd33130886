package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleUserNotifications(c *gin.Context) {
	list, err := s.deps.Notifications.ListForUser(c.Request.Context(), actorOf(c), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleMarkRead(c *gin.Context) {
	n, err := s.deps.Notifications.MarkRead(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) handleReadAll(c *gin.Context) {
	updated, err := s.deps.Notifications.MarkAllRead(c.Request.Context(), actorOf(c), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": updated})
}

func (s *Server) handleDeleteNotification(c *gin.Context) {
	if err := s.deps.Notifications.Delete(c.Request.Context(), actorOf(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
