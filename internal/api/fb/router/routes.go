// Package router đăng ký các route thuộc domain Facebook: Page, Conversation, Message.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	fbhdl "page_inbox/internal/api/fb/handler"
	apirouter "page_inbox/internal/api/router"
)

// Register đăng ký tất cả route Facebook lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	if err := registerPageRoutes(v1, r); err != nil {
		return err
	}
	if err := registerConversationRoutes(v1, r); err != nil {
		return err
	}
	if err := registerMessageRoutes(v1, r); err != nil {
		return err
	}
	return nil
}

func registerPageRoutes(router fiber.Router, r *apirouter.Router) error {
	pageHandler, err := fbhdl.NewFbPageHandler()
	if err != nil {
		return fmt.Errorf("failed to create facebook page handler: %w", err)
	}

	auth := []fiber.Handler{r.AuthMiddleware()}
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/page", fiber.MethodPost, "/available", auth, pageHandler.HandleAvailablePages)
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/page", fiber.MethodPost, "/connect", auth, pageHandler.HandleConnectPage)
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/page", fiber.MethodGet, "/connected", auth, pageHandler.HandleConnectedPages)
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/page", fiber.MethodDelete, "/disconnect/:pageId", auth, pageHandler.HandleDisconnectPage)
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/page", fiber.MethodGet, "/find-by-page-id/:id", auth, pageHandler.HandleFindOneByPageID)
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/page", fiber.MethodPut, "/update-token", auth, pageHandler.HandleUpdateToken)

	if err := r.RegisterCRUDRoutes(router, "facebook/page", pageHandler, apirouter.ReadOnlyConfig()); err != nil {
		return err
	}
	return nil
}

func registerConversationRoutes(router fiber.Router, r *apirouter.Router) error {
	convHandler, err := fbhdl.NewFbConversationHandler()
	if err != nil {
		return fmt.Errorf("failed to create facebook conversation handler: %w", err)
	}

	auth := []fiber.Handler{r.AuthMiddleware()}
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/conversation", fiber.MethodGet, "/by-page/:pageId", auth, convHandler.HandleListByPage)
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/conversation", fiber.MethodGet, "/remote/:pageId", auth, convHandler.HandleListRemote)
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/conversation", fiber.MethodPost, "/mark-read/:id", auth, convHandler.HandleMarkRead)

	if err := r.RegisterCRUDRoutes(router, "facebook/conversation", convHandler, apirouter.ReadWriteConfig()); err != nil {
		return err
	}
	return nil
}

func registerMessageRoutes(router fiber.Router, r *apirouter.Router) error {
	messageHandler, err := fbhdl.NewFbMessageHandler()
	if err != nil {
		return fmt.Errorf("failed to create facebook message handler: %w", err)
	}

	auth := []fiber.Handler{r.AuthMiddleware()}
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/message", fiber.MethodGet, "/by-conversation/:conversationId", auth, messageHandler.HandleListByConversation)
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/message", fiber.MethodGet, "/remote/:conversationId", auth, messageHandler.HandleListRemote)
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/message", fiber.MethodPost, "/send/:conversationId", auth, messageHandler.HandleSend)
	apirouter.RegisterRouteWithMiddleware(router, "/facebook/message", fiber.MethodGet, "/find-by-message-id/:messageId", auth, messageHandler.HandleFindOneByMessageID)

	if err := r.RegisterCRUDRoutes(router, "facebook/message", messageHandler, apirouter.ReadOnlyConfig()); err != nil {
		return err
	}
	return nil
}
