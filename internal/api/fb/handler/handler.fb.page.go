package fbhdl

import (
	"fmt"

	basehdl "page_inbox/internal/api/base/handler"
	fbdto "page_inbox/internal/api/fb/dto"
	fbmodels "page_inbox/internal/api/fb/models"
	fbsvc "page_inbox/internal/api/fb/service"
	"page_inbox/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FbPageHandler xử lý các yêu cầu liên quan đến Facebook Page
type FbPageHandler struct {
	*basehdl.BaseHandler[fbmodels.FbPage, fbdto.FbPageConnectInput, fbdto.FbPageUpdateInput]
	FbPageService *fbsvc.FbPageService
}

// NewFbPageHandler khởi tạo FbPageHandler mới
func NewFbPageHandler() (*FbPageHandler, error) {
	service, err := fbsvc.NewFbPageService()
	if err != nil {
		return nil, fmt.Errorf("failed to create page service: %v", err)
	}
	hdl := &FbPageHandler{FbPageService: service}
	hdl.BaseHandler = basehdl.NewBaseHandler[fbmodels.FbPage, fbdto.FbPageConnectInput, fbdto.FbPageUpdateInput](service)
	return hdl, nil
}

// accountIDFromContext lấy account ID đã được middleware xác thực gắn vào context
func accountIDFromContext(c fiber.Ctx) (primitive.ObjectID, error) {
	userID := c.Locals("user_id")
	if userID == nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeAuthToken, "User not authenticated", common.StatusUnauthorized, nil)
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "Invalid user ID", common.StatusBadRequest, err)
	}
	return objID, nil
}

// HandleConnectPage kết nối một trang Facebook vào tài khoản sau OAuth
func (h *FbPageHandler) HandleConnectPage(c fiber.Ctx) error {
	accountID, err := accountIDFromContext(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	input := new(fbdto.FbPageConnectInput)
	if err := h.ParseRequestBody(c, input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	page, err := h.FbPageService.ConnectPage(c.Context(), accountID, input)
	h.HandleResponse(c, page, err)
	return nil
}

// HandleAvailablePages liệt kê các trang tài khoản có quyền MANAGE (OAuth picker)
func (h *FbPageHandler) HandleAvailablePages(c fiber.Ctx) error {
	input := new(fbdto.FbPageAvailableInput)
	if err := h.ParseRequestBody(c, input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	pages, err := h.FbPageService.AvailablePages(c.Context(), input)
	h.HandleResponse(c, pages, err)
	return nil
}

// HandleConnectedPages liệt kê các trang đang kết nối của tài khoản
func (h *FbPageHandler) HandleConnectedPages(c fiber.Ctx) error {
	accountID, err := accountIDFromContext(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	pages, err := h.FbPageService.ListActiveByAccount(c.Context(), accountID)
	h.HandleResponse(c, pages, err)
	return nil
}

// HandleDisconnectPage ngắt kết nối một trang (soft delete)
func (h *FbPageHandler) HandleDisconnectPage(c fiber.Ctx) error {
	accountID, err := accountIDFromContext(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	pageId := c.Params("pageId")
	if pageId == "" {
		h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Thiếu pageId", common.StatusBadRequest, nil))
		return nil
	}
	err = h.FbPageService.DisconnectPage(c.Context(), accountID, pageId)
	h.HandleResponse(c, nil, err)
	return nil
}

// HandleFindOneByPageID tìm credential đang active theo pageId bên ngoài
func (h *FbPageHandler) HandleFindOneByPageID(c fiber.Ctx) error {
	id := h.GetIDFromContext(c)
	data, err := h.FbPageService.FindActiveByPageID(c.Context(), id)
	h.HandleResponse(c, data, err)
	return nil
}

// HandleUpdateToken cập nhật access token của một FbPage
func (h *FbPageHandler) HandleUpdateToken(c fiber.Ctx) error {
	input := new(fbdto.FbPageUpdateTokenInput)
	if err := h.ParseRequestBody(c, input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	data, err := h.FbPageService.UpdateToken(c.Context(), input)
	h.HandleResponse(c, data, err)
	return nil
}
