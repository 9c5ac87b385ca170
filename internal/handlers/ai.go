package handlers

import (
	"cerebmod/internal/db"
	"cerebmod/internal/models"
	"cerebmod/internal/services"
	"cerebmod/internal/utils"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AIHandler forwards moderator requests to the LLM. Only suggested replies
// are persisted.
type AIHandler struct {
	db  *db.Provider
	llm *services.LLMService
}

func NewAIHandler(p *db.Provider, llm *services.LLMService) *AIHandler {
	return &AIHandler{db: p, llm: llm}
}

func (h *AIHandler) ask(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	out, err := fn(ctx)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, services.ErrLLMDisabled) {
		return "", err
	}
	return "", fmt.Errorf("%w: %w", errUpstream, err)
}

type generateReplyRequest struct {
	ModerationCaseID flexID `json:"moderationCaseId"`
	ReportDetails    string `json:"reportDetails"`
}

// GenerateModReply drafts a reply for a case and stores it as a ModReply.
// No session is held open while waiting for the model.
func (h *AIHandler) GenerateModReply(c *gin.Context) {
	var req generateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.ModerationCaseID == 0 {
		BadRequest(c, "Missing moderationCaseId")
		return
	}
	if !h.llm.Enabled() {
		RespondError(c, services.ErrLLMDisabled)
		return
	}

	ctx := c.Request.Context()
	caseID := uint(req.ModerationCaseID)

	err := h.db.WithSession(ctx, func(tx *gorm.DB) error {
		var mc models.ModerationCase
		if err := tx.Select("id").First(&mc, caseID).Error; err != nil {
			return fmt.Errorf("moderation case %d: %w", caseID, err)
		}
		return nil
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	text, err := h.ask(ctx, func(ctx context.Context) (string, error) {
		return h.llm.GenerateModReply(ctx, req.ReportDetails)
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	text = utils.StripHTML(text)
	if text == "" {
		RespondError(c, fmt.Errorf("%w: empty reply", errUpstream))
		return
	}

	reply := models.ModReply{ModerationCaseID: caseID, ReplyText: text}
	err = h.db.WithSession(ctx, func(tx *gorm.DB) error {
		return createReply(tx, &reply)
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"modReply": reply.ReplyText, "replyId": reply.ID})
}

type autoModerateRequest struct {
	PostID  string `json:"post_id"`
	Content string `json:"content"`
}

// AutoModerate returns the model's recommendation for a post.
func (h *AIHandler) AutoModerate(c *gin.Context) {
	var req autoModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.PostID == "" || strings.TrimSpace(req.Content) == "" {
		BadRequest(c, "Missing postId or content")
		return
	}

	out, err := h.ask(c.Request.Context(), func(ctx context.Context) (string, error) {
		return h.llm.AutoModerate(ctx, req.Content)
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendation": out})
}

type explainRequest struct {
	PostID string `json:"post_id"`
	Text   string `json:"text"`
}

// ExplainPost explains the given text, or the stored content of post_id.
func (h *AIHandler) ExplainPost(c *gin.Context) {
	var req explainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.PostID == "" && req.Text == "" {
		BadRequest(c, "Either postId or text must be provided")
		return
	}

	ctx := c.Request.Context()
	text := req.Text
	if text == "" {
		err := h.db.WithSession(ctx, func(tx *gorm.DB) error {
			var post models.Post
			if err := tx.Select("id", "content").First(&post, "id = ?", req.PostID).Error; err != nil {
				return fmt.Errorf("post %s: %w", req.PostID, err)
			}
			text = post.Content
			return nil
		})
		if err != nil {
			RespondError(c, err)
			return
		}
	}

	out, err := h.ask(ctx, func(ctx context.Context) (string, error) {
		return h.llm.ExplainPost(ctx, text)
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"explanation": out})
}
