package handlers

import (
	"cerebmod/internal/db"
	"cerebmod/internal/models"
	"cerebmod/internal/utils"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type ModerationHandler struct {
	db *db.Provider
}

func NewModerationHandler(p *db.Provider) *ModerationHandler {
	return &ModerationHandler{db: p}
}

type storeCaseRequest struct {
	PostID string `json:"post_id"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// StoreCase records a moderation decision for an existing post.
func (h *ModerationHandler) StoreCase(c *gin.Context) {
	var req storeCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	req.Action = strings.TrimSpace(req.Action)
	if req.PostID == "" || req.Action == "" || req.Reason == "" {
		BadRequest(c, "Missing post_id, action or reason")
		return
	}
	if utf8.RuneCountInString(req.Action) > 50 {
		BadRequest(c, "action must be at most 50 characters")
		return
	}

	mc := models.ModerationCase{PostID: req.PostID, Action: req.Action, Reason: req.Reason}
	err := h.db.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, "id = ?", req.PostID).Error; err != nil {
			return fmt.Errorf("post %s: %w", req.PostID, err)
		}
		return tx.Create(&mc).Error
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"caseId": mc.ID})
}

// ListCases returns the newest cases, optionally for one post.
func (h *ModerationHandler) ListCases(c *gin.Context) {
	limit := utils.ClampLimit(c.Query("limit"), defaultPageSize, maxPageSize)
	postID := c.Query("post_id")

	var cases []models.ModerationCase
	err := h.db.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		q := tx.Order("created_at DESC").Order("id DESC").Limit(limit)
		if postID != "" {
			q = q.Where("post_id = ?", postID)
		}
		return q.Find(&cases).Error
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cases": cases})
}

type storeReplyRequest struct {
	ModerationCaseID flexID `json:"moderationCaseId"`
	ReplyText        string `json:"replyText"`
}

// StoreReply saves a reply written or approved by a moderator.
func (h *ModerationHandler) StoreReply(c *gin.Context) {
	var req storeReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.ModerationCaseID == 0 || strings.TrimSpace(req.ReplyText) == "" {
		BadRequest(c, "Missing moderationCaseId or replyText")
		return
	}

	reply := models.ModReply{ModerationCaseID: uint(req.ModerationCaseID), ReplyText: req.ReplyText}
	err := h.db.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		return createReply(tx, &reply)
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"replyId": reply.ID})
}

// createReply inserts reply after checking its case exists.
func createReply(tx *gorm.DB, reply *models.ModReply) error {
	var mc models.ModerationCase
	if err := tx.Select("id").First(&mc, reply.ModerationCaseID).Error; err != nil {
		return fmt.Errorf("moderation case %d: %w", reply.ModerationCaseID, err)
	}
	return tx.Create(reply).Error
}

type replyView struct {
	models.ModReply
	ReplyHTML string `json:"reply_html"`
}

// ListReplies returns the newest replies with a rendered HTML copy.
func (h *ModerationHandler) ListReplies(c *gin.Context) {
	limit := utils.ClampLimit(c.Query("limit"), defaultPageSize, maxPageSize)
	caseID := utils.StringToInt(c.Query("moderation_case_id"))

	var replies []models.ModReply
	err := h.db.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		q := tx.Order("created_at DESC").Order("id DESC").Limit(limit)
		if caseID > 0 {
			q = q.Where("moderation_case_id = ?", caseID)
		}
		return q.Find(&replies).Error
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	views := make([]replyView, len(replies))
	for i, r := range replies {
		views[i] = replyView{ModReply: r, ReplyHTML: utils.RenderMarkdown(r.ReplyText)}
	}
	c.JSON(http.StatusOK, gin.H{"replies": views})
}
