package global

import (
	"page_inbox/config"
	"page_inbox/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Users           string // Tên collection cho người dùng helpdesk
	FbPages         string // Tên collection cho trang Facebook đã kết nối
	FbConversations string // Tên collection cho cuộc trò chuyện trên Facebook
	FbMessages      string // Tên collection cho tin nhắn trên Facebook
	WebhookLogs     string // Tên collection cho webhook logs
}

// Các biến toàn cục
var Validate *validator.Validate                  // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                 // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration            // Cấu hình của server
var MongoDB_ColNames = *new(MongoDB_CollectionName) // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
