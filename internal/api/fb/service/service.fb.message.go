package fbsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "page_inbox/internal/api/base/service"
	fbmodels "page_inbox/internal/api/fb/models"
	"page_inbox/internal/common"
	"page_inbox/internal/global"
	"page_inbox/internal/utility"
)

// FbMessageService là store cục bộ của các tin nhắn
type FbMessageService struct {
	*basesvc.BaseServiceMongoImpl[fbmodels.FbMessage]
}

// NewFbMessageService tạo mới FbMessageService
func NewFbMessageService() (*FbMessageService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.FbMessages)
	if !exist {
		return nil, fmt.Errorf("failed to get fb_messages collection: %v", common.ErrNotFound)
	}
	return &FbMessageService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[fbmodels.FbMessage](coll),
	}, nil
}

// UpsertIncoming ghi một tin nhắn mới, idempotent theo messageId:
// nếu đã có tin nhắn cùng id thì không thay đổi gì và trả về bản ghi hiện có
// (webhook có thể gửi lặp cùng một event). Toàn bộ field chỉ nằm trong
// $setOnInsert nên re-delivery đúng nghĩa là no-op.
// Giá trị bool trả về cho biết tin nhắn được insert mới hay đã tồn tại,
// để caller bỏ qua các side effect (unread, lastMessageAt) khi replay.
func (s *FbMessageService) UpsertIncoming(ctx context.Context, msg fbmodels.FbMessage) (fbmodels.FbMessage, bool, error) {
	now := time.Now().UnixMilli()
	if msg.Timestamp <= 0 {
		msg.Timestamp = now
	}
	if msg.Status == "" {
		msg.Status = fbmodels.MessageStatusSent
	}

	doc, err := utility.ToMap(msg)
	if err != nil {
		return msg, false, common.ErrInvalidFormat
	}
	delete(doc, "_id")
	doc["createdAt"] = now
	doc["updatedAt"] = now

	filter := bson.M{"messageId": msg.MessageId}
	update := bson.M{"$setOnInsert": doc}

	result, err := s.Collection().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return msg, false, common.ConvertMongoError(err)
	}
	inserted := result.UpsertedCount > 0

	var stored fbmodels.FbMessage
	if err := s.Collection().FindOne(ctx, filter).Decode(&stored); err != nil {
		return msg, inserted, common.ConvertMongoError(err)
	}
	return stored, inserted, nil
}

// BuildDeliveryFilter tạo filter chọn các tin nhắn của hội thoại có mid nằm
// trong danh sách delivered. Chỉ chọn tin đang ở trạng thái sent: trạng thái
// chỉ tiến không lùi, tin đã read không được kéo ngược về delivered.
func BuildDeliveryFilter(conversationID primitive.ObjectID, mids []string) bson.M {
	return bson.M{
		"conversationId": conversationID,
		"metadata.mid":   bson.M{"$in": mids},
		"status":         fbmodels.MessageStatusSent,
	}
}

// BuildReadFilter tạo filter chọn các tin nhắn của hội thoại có timestamp
// không vượt quá watermark và chưa ở trạng thái read/failed
func BuildReadFilter(conversationID primitive.ObjectID, readWatermark int64) bson.M {
	return bson.M{
		"conversationId": conversationID,
		"timestamp":      bson.M{"$lte": readWatermark},
		"status": bson.M{"$in": []string{
			fbmodels.MessageStatusSent,
			fbmodels.MessageStatusDelivered,
		}},
	}
}

// ApplyDeliveryReceipt chuyển các tin nhắn được liệt kê sang delivered và
// gắn watermark. Watermark dùng $max nên receipt đến muộn với watermark nhỏ
// hơn không ghi đè tiến độ đã có; áp lại cùng một receipt là no-op.
func (s *FbMessageService) ApplyDeliveryReceipt(ctx context.Context, conversationID primitive.ObjectID, mids []string, watermark int64) (int64, error) {
	if len(mids) == 0 {
		return 0, nil
	}
	filter := BuildDeliveryFilter(conversationID, mids)
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status": fbmodels.MessageStatusDelivered,
		},
		Max: map[string]interface{}{
			"metadata.watermark": watermark,
		},
	}
	return s.BaseServiceMongoImpl.UpdateMany(ctx, filter, update, nil)
}

// ApplyReadReceipt chuyển mọi tin nhắn của hội thoại có timestamp <= watermark
// sang read. Filter loại trừ tin đã read nên áp lại receipt là no-op.
func (s *FbMessageService) ApplyReadReceipt(ctx context.Context, conversationID primitive.ObjectID, readWatermark int64) (int64, error) {
	filter := BuildReadFilter(conversationID, readWatermark)
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":        fbmodels.MessageStatusRead,
			"metadata.read": true,
		},
	}
	return s.BaseServiceMongoImpl.UpdateMany(ctx, filter, update, nil)
}

// List liệt kê tin nhắn của một hội thoại, mới nhất trước
func (s *FbMessageService) List(ctx context.Context, conversationID primitive.ObjectID, limit int64, skip int64) ([]fbmodels.FbMessage, error) {
	filter := bson.M{"conversationId": conversationID}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(skip)
	return s.BaseServiceMongoImpl.Find(ctx, filter, opts)
}

// FindOneByMessageID tìm một tin nhắn theo messageId bên ngoài
func (s *FbMessageService) FindOneByMessageID(ctx context.Context, messageId string) (fbmodels.FbMessage, error) {
	return s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"messageId": messageId}, nil)
}
