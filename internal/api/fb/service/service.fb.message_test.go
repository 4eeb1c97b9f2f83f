// Package fbsvc - Test filter receipt: trạng thái tin nhắn chỉ tiến không lùi.
package fbsvc

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	basesvc "page_inbox/internal/api/base/service"
	fbmodels "page_inbox/internal/api/fb/models"
)

// UpsertIncoming phải phân biệt insert mới với bản ghi đã tồn tại:
// cờ inserted là căn cứ để bộ xử lý webhook bỏ qua side effect khi re-delivery.
func TestUpsertIncoming_ReportsInsertedVsExisting(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	storedDoc := bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "messageId", Value: "mid.abc"},
		{Key: "status", Value: fbmodels.MessageStatusSent},
	}

	mt.Run("lần giao đầu tiên", func(mt *mtest.T) {
		svc := &FbMessageService{
			BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[fbmodels.FbMessage](mt.Coll),
		}
		mt.AddMockResponses(
			bson.D{
				{Key: "ok", Value: 1},
				{Key: "n", Value: 1},
				{Key: "nModified", Value: 0},
				{Key: "upserted", Value: bson.A{
					bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: primitive.NewObjectID()}},
				}},
			},
			mtest.CreateCursorResponse(0, "page_inbox.fb_messages", mtest.FirstBatch, storedDoc),
		)

		_, inserted, err := svc.UpsertIncoming(context.Background(), fbmodels.FbMessage{MessageId: "mid.abc"})
		if err != nil {
			t.Fatalf("UpsertIncoming trả lỗi: %v", err)
		}
		if !inserted {
			t.Error("lần giao đầu tiên phải báo inserted=true")
		}
	})

	mt.Run("giao lặp", func(mt *mtest.T) {
		svc := &FbMessageService{
			BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[fbmodels.FbMessage](mt.Coll),
		}
		mt.AddMockResponses(
			bson.D{
				{Key: "ok", Value: 1},
				{Key: "n", Value: 1},
				{Key: "nModified", Value: 0},
			},
			mtest.CreateCursorResponse(0, "page_inbox.fb_messages", mtest.FirstBatch, storedDoc),
		)

		stored, inserted, err := svc.UpsertIncoming(context.Background(), fbmodels.FbMessage{MessageId: "mid.abc"})
		if err != nil {
			t.Fatalf("UpsertIncoming trả lỗi: %v", err)
		}
		if inserted {
			t.Error("re-delivery phải báo inserted=false để caller không cộng lại unread")
		}
		if stored.MessageId != "mid.abc" {
			t.Errorf("bản ghi hiện có không được trả về: %+v", stored)
		}
	})
}

func TestBuildDeliveryFilter_OnlyTouchesSentMessages(t *testing.T) {
	convID := primitive.NewObjectID()
	filter := BuildDeliveryFilter(convID, []string{"mid_1", "mid_2"})

	if filter["conversationId"] != convID {
		t.Errorf("conversationId = %v", filter["conversationId"])
	}

	// Receipt delivered không được kéo tin đã read lùi về delivered
	if filter["status"] != fbmodels.MessageStatusSent {
		t.Errorf("status = %v, delivery chỉ được áp lên tin đang sent", filter["status"])
	}

	mids, ok := filter["metadata.mid"].(bson.M)
	if !ok {
		t.Fatalf("metadata.mid = %v, muốn bson.M với $in", filter["metadata.mid"])
	}
	in, ok := mids["$in"].([]string)
	if !ok || len(in) != 2 {
		t.Errorf("$in = %v, muốn danh sách 2 mid", mids["$in"])
	}
}

func TestBuildReadFilter_WatermarkAndForwardOnlyStatuses(t *testing.T) {
	convID := primitive.NewObjectID()
	filter := BuildReadFilter(convID, 1700000000000)

	ts, ok := filter["timestamp"].(bson.M)
	if !ok {
		t.Fatalf("timestamp = %v, muốn bson.M", filter["timestamp"])
	}
	if ts["$lte"] != int64(1700000000000) {
		t.Errorf("$lte = %v, read áp cho mọi tin đến watermark", ts["$lte"])
	}

	status, ok := filter["status"].(bson.M)
	if !ok {
		t.Fatalf("status = %v, muốn bson.M với $in", filter["status"])
	}
	in, ok := status["$in"].([]string)
	if !ok {
		t.Fatalf("$in = %v", status["$in"])
	}
	// Tin đã read hoặc failed không bị áp lại: áp trùng receipt phải là no-op
	for _, s := range in {
		if s == fbmodels.MessageStatusRead || s == fbmodels.MessageStatusFailed {
			t.Errorf("filter bao gồm trạng thái %q, read receipt không được chạm vào", s)
		}
	}
	if len(in) != 2 {
		t.Errorf("$in = %v, muốn đúng [sent delivered]", in)
	}
}
