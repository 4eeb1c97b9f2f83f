package fbsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "page_inbox/internal/api/base/models"
	basesvc "page_inbox/internal/api/base/service"
	fbmodels "page_inbox/internal/api/fb/models"
	"page_inbox/internal/common"
	"page_inbox/internal/global"
)

// SessionWindow cửa sổ phiên hội thoại theo session semantics của Messenger:
// khách hàng im lặng quá 24 giờ thì tin nhắn tiếp theo mở hội thoại mới.
const SessionWindow = 24 * time.Hour

// FbConversationService là store cục bộ của các hội thoại
type FbConversationService struct {
	*basesvc.BaseServiceMongoImpl[fbmodels.FbConversation]
}

// NewFbConversationService tạo mới FbConversationService
func NewFbConversationService() (*FbConversationService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.FbConversations)
	if !exist {
		return nil, fmt.Errorf("failed to get fb_conversations collection: %v", common.ErrNotFound)
	}
	return &FbConversationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[fbmodels.FbConversation](coll),
	}, nil
}

// BuildSessionFilter tạo filter tìm hội thoại của (pageId, customerId) còn
// trong cửa sổ phiên 24h tính từ now (unix millis). Biên cửa sổ là inclusive.
func BuildSessionFilter(pageId string, customerId string, now int64) bson.M {
	return bson.M{
		"pageId":        pageId,
		"customerId":    customerId,
		"lastMessageAt": bson.M{"$gte": now - SessionWindow.Milliseconds()},
	}
}

// FindOrCreate tìm hội thoại của (pageId, customerId) trong cửa sổ 24h,
// tạo mới nếu chưa có. Toàn bộ đi qua một FindOneAndUpdate upsert duy nhất
// có filter nhúng điều kiện cửa sổ, nên hai webhook đến gần đồng thời cho
// cùng khách hàng vẫn chỉ tạo một bản ghi; unique index
// (pageId, customerId, sessionKey) là chốt chặn cuối nếu race vẫn lọt qua.
// Tên/ảnh khách hàng được cập nhật khi giá trị mới không rỗng.
func (s *FbConversationService) FindOrCreate(ctx context.Context, pageId string, customerId string, displayName string, avatarUrl string) (fbmodels.FbConversation, error) {
	now := time.Now().UnixMilli()
	filter := BuildSessionFilter(pageId, customerId, now)

	update := &basesvc.UpdateData{
		Set: map[string]interface{}{},
		SetOnInsert: map[string]interface{}{
			"sessionKey":    now,
			"lastMessageAt": now,
			"unreadCount":   int64(0),
			"status":        fbmodels.ConversationStatusOpen,
			"isActive":      true,
			"createdAt":     now,
		},
	}
	if displayName != "" {
		update.Set["customerName"] = displayName
	} else {
		update.SetOnInsert["customerName"] = "Unknown User"
	}
	if avatarUrl != "" {
		update.Set["customerProfilePic"] = avatarUrl
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	conversation, err := s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, update, opts)
	if err != nil {
		// Thua race với một writer khác: unique index đã chặn bản ghi thứ hai,
		// đọc lại bản ghi thắng cuộc
		if errors.Is(err, common.ErrMongoDuplicate) {
			return s.BaseServiceMongoImpl.FindOne(ctx, filter, nil)
		}
		return conversation, err
	}
	return conversation, nil
}

// RecordActivity cập nhật preview và thời điểm tin nhắn gần nhất của hội thoại
func (s *FbConversationService) RecordActivity(ctx context.Context, conversationID primitive.ObjectID, previewText string, timestamp int64) error {
	if timestamp <= 0 {
		timestamp = time.Now().UnixMilli()
	}
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"lastMessageAt":   timestamp,
			"lastMessageText": previewText,
		},
	}
	_, err := s.BaseServiceMongoImpl.UpdateById(ctx, conversationID, updateData)
	return err
}

// IncrementUnread tăng bộ đếm tin chưa đọc của hội thoại
func (s *FbConversationService) IncrementUnread(ctx context.Context, conversationID primitive.ObjectID) error {
	update := bson.M{
		"$inc": bson.M{"unreadCount": 1},
		"$set": bson.M{"updatedAt": time.Now().UnixMilli()},
	}
	result, err := s.Collection().UpdateByID(ctx, conversationID, update)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// MarkRead đưa bộ đếm tin chưa đọc của hội thoại về 0
func (s *FbConversationService) MarkRead(ctx context.Context, conversationID primitive.ObjectID) error {
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{"unreadCount": int64(0)},
	}
	_, err := s.BaseServiceMongoImpl.UpdateById(ctx, conversationID, updateData)
	return err
}

// ListByPage liệt kê hội thoại của một trang, mới nhất trước, có phân trang
func (s *FbConversationService) ListByPage(ctx context.Context, pageId string, page int64, limit int64) (*basemodels.PaginateResult[fbmodels.FbConversation], error) {
	filter := bson.M{"pageId": pageId, "isActive": true}
	opts := options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}})
	return s.BaseServiceMongoImpl.FindWithPagination(ctx, filter, page, limit, opts)
}
