package handlers

import (
	"cerebmod/internal/db"
	"cerebmod/internal/models"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	db *db.Provider
}

func NewPostHandler(p *db.Provider) *PostHandler {
	return &PostHandler{db: p}
}

type storePostRequest struct {
	ID        string   `json:"id" binding:"required,max=255"`
	Title     string   `json:"title" binding:"required,max=255"`
	Content   string   `json:"content" binding:"required"`
	Flair     *string  `json:"flair" binding:"omitempty,max=50"`
	ImageURLs []string `json:"image_urls"`
}

// Store saves a post mirrored from the subreddit.
func (h *PostHandler) Store(c *gin.Context) {
	var req storePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	post := models.Post{
		ID:      req.ID,
		Title:   req.Title,
		Content: req.Content,
		Flair:   req.Flair,
	}
	if req.ImageURLs != nil {
		post.ImageURLs = models.StringList(req.ImageURLs)
	}

	err := h.db.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		return tx.Create(&post).Error
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"postId": post.ID})
}

// Get returns a single post by id.
func (h *PostHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var post models.Post
	err := h.db.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return fmt.Errorf("post %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}
