package fbhdl

import (
	"fmt"
	"strconv"

	basehdl "page_inbox/internal/api/base/handler"
	fbclient "page_inbox/internal/api/fb/client"
	fbdto "page_inbox/internal/api/fb/dto"
	fbmodels "page_inbox/internal/api/fb/models"
	fbsvc "page_inbox/internal/api/fb/service"
	"page_inbox/internal/common"
	"page_inbox/internal/global"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FbConversationHandler xử lý các route liên quan đến hội thoại
type FbConversationHandler struct {
	*basehdl.BaseHandler[fbmodels.FbConversation, fbdto.FbConversationCreateInput, fbdto.FbConversationUpdateInput]
	FbConversationService *fbsvc.FbConversationService
	FbPageService         *fbsvc.FbPageService
	Fetcher               *fbsvc.ConversationFetcher
}

// NewFbConversationHandler tạo FbConversationHandler mới
func NewFbConversationHandler() (*FbConversationHandler, error) {
	conversationService, err := fbsvc.NewFbConversationService()
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation service: %v", err)
	}
	pageService, err := fbsvc.NewFbPageService()
	if err != nil {
		return nil, fmt.Errorf("failed to create page service: %v", err)
	}
	hdl := &FbConversationHandler{
		FbConversationService: conversationService,
		FbPageService:         pageService,
		Fetcher:               fbsvc.NewConversationFetcher(fbclient.NewClient(global.ServerConfig)),
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[fbmodels.FbConversation, fbdto.FbConversationCreateInput, fbdto.FbConversationUpdateInput](conversationService)
	return hdl, nil
}

// ownedActivePage tìm trang active theo pageId và kiểm tra thuộc về tài khoản hiện tại
func (h *FbConversationHandler) ownedActivePage(c fiber.Ctx, pageId string) (fbmodels.FbPage, error) {
	accountID, err := accountIDFromContext(c)
	if err != nil {
		return fbmodels.FbPage{}, err
	}
	page, err := h.FbPageService.FindActiveByPageID(c.Context(), pageId)
	if err != nil {
		return page, err
	}
	if page.AccountID != accountID {
		return page, common.ErrNotFound
	}
	return page, nil
}

// HandleListByPage liệt kê hội thoại cục bộ của một trang, mới nhất trước, có phân trang
func (h *FbConversationHandler) HandleListByPage(c fiber.Ctx) error {
	pageId := c.Params("pageId")
	if _, err := h.ownedActivePage(c, pageId); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	pageInt, limitInt := h.ParsePagination(c)
	result, err := h.FbConversationService.ListByPage(c.Context(), pageId, int64(pageInt), int64(limitInt))
	h.HandleResponse(c, result, err)
	return nil
}

// HandleMarkRead đưa bộ đếm tin chưa đọc của hội thoại về 0
func (h *FbConversationHandler) HandleMarkRead(c fiber.Ctx) error {
	id := h.GetIDFromContext(c)
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "ID hội thoại không hợp lệ", common.StatusBadRequest, err))
		return nil
	}
	err = h.FbConversationService.MarkRead(c.Context(), objID)
	h.HandleResponse(c, nil, err)
	return nil
}

// HandleListRemote kéo danh sách hội thoại trực tiếp từ Graph API
// (đường reconciliation khi mirror cục bộ chưa có hoặc đã cũ)
func (h *FbConversationHandler) HandleListRemote(c fiber.Ctx) error {
	pageId := c.Params("pageId")
	page, err := h.ownedActivePage(c, pageId)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	conversations, err := h.Fetcher.ListConversations(c.Context(), page, limit)
	h.HandleResponse(c, conversations, err)
	return nil
}
