package server

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"sweetshop-backend/internal/domain"
	"sweetshop-backend/internal/usecase"
)

const maxPhotoBytes = 5 << 20

func (s *Server) handleListSweets(c *gin.Context) {
	list, err := s.deps.Catalog.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetSweet(c *gin.Context) {
	sw, err := s.deps.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sw)
}

func (s *Server) handleAvailable(c *gin.Context) {
	size, ok := domain.ParseSizeTier(c.Query("size"))
	if !ok {
		s.fail(c, usecase.ErrBadRequest("size must be one of 250g, 500g, 1kg"))
		return
	}
	id := domain.NormalizeID(c.Param("id"))
	n, err := s.deps.Inventory.GetAvailable(c.Request.Context(), id, size)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sweetId": id, "size": size, "available": n})
}

func (s *Server) handleCreateSweet(c *gin.Context) {
	var in usecase.SweetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	sw, err := s.deps.Catalog.Create(c.Request.Context(), actorOf(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sw)
}

func (s *Server) handleUpdateSweet(c *gin.Context) {
	var in usecase.SweetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	sw, err := s.deps.Catalog.Update(c.Request.Context(), actorOf(c), c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sw)
}

func (s *Server) handleDeleteSweet(c *gin.Context) {
	if err := s.deps.Catalog.Delete(c.Request.Context(), actorOf(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sweet deleted"})
}

func (s *Server) handleSetStock(c *gin.Context) {
	var st domain.Stock
	if err := c.ShouldBindJSON(&st); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	sw, err := s.deps.Catalog.SetStock(c.Request.Context(), actorOf(c), c.Param("id"), st)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sw)
}

func (s *Server) handleAddPhotos(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid multipart form")
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		s.err(c, http.StatusBadRequest, "BadRequest", "field 'photos' required")
		return
	}
	photos := make([]usecase.Photo, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxPhotoBytes {
			s.err(c, http.StatusBadRequest, "BadRequest", "photo too large")
			return
		}
		f, err := fh.Open()
		if err != nil {
			s.fail(c, err)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
		_ = f.Close()
		if err != nil {
			s.fail(c, err)
			return
		}
		photos = append(photos, usecase.Photo{Filename: filepath.Base(fh.Filename), Data: data})
	}
	sw, err := s.deps.Catalog.AddPhotos(c.Request.Context(), actorOf(c), c.Param("id"), photos)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sw)
}
