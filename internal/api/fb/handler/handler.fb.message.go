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

// FbMessageHandler xử lý các route liên quan đến tin nhắn
type FbMessageHandler struct {
	*basehdl.BaseHandler[fbmodels.FbMessage, fbdto.FbMessageCreateInput, fbdto.FbMessageUpdateInput]
	FbMessageService *fbsvc.FbMessageService
	FbPageService    *fbsvc.FbPageService
	Fetcher          *fbsvc.ConversationFetcher
	Relay            *fbsvc.OutboundRelay
}

// NewFbMessageHandler tạo FbMessageHandler mới
func NewFbMessageHandler() (*FbMessageHandler, error) {
	messageService, err := fbsvc.NewFbMessageService()
	if err != nil {
		return nil, fmt.Errorf("failed to create message service: %v", err)
	}
	pageService, err := fbsvc.NewFbPageService()
	if err != nil {
		return nil, fmt.Errorf("failed to create page service: %v", err)
	}
	graph := fbclient.NewClient(global.ServerConfig)
	hdl := &FbMessageHandler{
		FbMessageService: messageService,
		FbPageService:    pageService,
		Fetcher:          fbsvc.NewConversationFetcher(graph),
		Relay:            fbsvc.NewOutboundRelay(graph),
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[fbmodels.FbMessage, fbdto.FbMessageCreateInput, fbdto.FbMessageUpdateInput](messageService)
	return hdl, nil
}

// accountPages lấy danh sách trang active của tài khoản hiện tại
func (h *FbMessageHandler) accountPages(c fiber.Ctx) ([]fbmodels.FbPage, error) {
	accountID, err := accountIDFromContext(c)
	if err != nil {
		return nil, err
	}
	return h.FbPageService.ListActiveByAccount(c.Context(), accountID)
}

// HandleListByConversation liệt kê tin nhắn cục bộ của một hội thoại, mới nhất trước
func (h *FbMessageHandler) HandleListByConversation(c fiber.Ctx) error {
	conversationId := c.Params("conversationId")
	objID, err := primitive.ObjectIDFromHex(conversationId)
	if err != nil {
		h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "ID hội thoại không hợp lệ", common.StatusBadRequest, err))
		return nil
	}

	limit := int64(50)
	skip := int64(0)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if raw := c.Query("skip"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed >= 0 {
			skip = parsed
		}
	}

	messages, err := h.FbMessageService.List(c.Context(), objID, limit, skip)
	h.HandleResponse(c, messages, err)
	return nil
}

// HandleListRemote kéo tin nhắn của một hội thoại trực tiếp từ Graph API,
// thử lần lượt các credential của tài khoản vì không biết trước hội thoại thuộc trang nào
func (h *FbMessageHandler) HandleListRemote(c fiber.Ctx) error {
	conversationId := c.Params("conversationId")
	pages, err := h.accountPages(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	messages, err := h.Fetcher.ListMessages(c.Context(), conversationId, pages, limit)
	h.HandleResponse(c, messages, err)
	return nil
}

// HandleSend gửi trả lời của agent vào hội thoại
func (h *FbMessageHandler) HandleSend(c fiber.Ctx) error {
	conversationId := c.Params("conversationId")
	input := new(fbdto.FbSendMessageInput)
	if err := h.ParseRequestBody(c, input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	pages, err := h.accountPages(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	// Chọn payload theo loại nội dung: text > ảnh > template
	payload := fbclient.TextMessage(input.Text)
	preview := input.Text
	switch {
	case input.Text != "":
	case input.ImageUrl != "":
		payload = fbclient.ImageMessage(input.ImageUrl)
		preview = "[Attachment]"
	case input.Template != nil:
		payload = fbclient.TemplateMessage(input.Template)
		preview = "[Attachment]"
	}

	result, err := h.Relay.SendPayload(c.Context(), conversationId, payload, preview, pages)
	h.HandleResponse(c, result, err)
	return nil
}

// HandleFindOneByMessageID tìm một tin nhắn theo messageId bên ngoài
func (h *FbMessageHandler) HandleFindOneByMessageID(c fiber.Ctx) error {
	messageId := c.Params("messageId")
	if messageId == "" {
		h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Thiếu messageId", common.StatusBadRequest, nil))
		return nil
	}
	data, err := h.FbMessageService.FindOneByMessageID(c.Context(), messageId)
	h.HandleResponse(c, data, err)
	return nil
}
