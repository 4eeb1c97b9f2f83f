// Package basesvc - Test UpdateOne với mock deployment của mongo driver.
package basesvc

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

type connectedPage struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	PageId   string             `bson:"pageId"`
	IsActive bool               `bson:"isActive"`
}

// UpdateOne phải trả về document sau update ngay cả khi update làm filter
// không còn khớp (soft delete: filter isActive=true, update set isActive=false).
// Toàn bộ thao tác đi qua một findAndModify duy nhất.
func TestUpdateOne_UpdateFalsifiesFilter_StillReturnsDoc(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("soft delete", func(mt *mtest.T) {
		svc := NewBaseServiceMongo[connectedPage](mt.Coll)

		oid := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "_id", Value: oid},
				{Key: "pageId", Value: "page_1"},
				{Key: "isActive", Value: false},
			}},
		})

		filter := bson.M{"pageId": "page_1", "isActive": true}
		update := &UpdateData{Set: map[string]interface{}{"isActive": false}}

		updated, err := svc.UpdateOne(context.Background(), filter, update, nil)
		if err != nil {
			t.Fatalf("UpdateOne trả lỗi sau khi update thành công: %v", err)
		}
		if updated.IsActive {
			t.Error("document trả về phải phản ánh trạng thái sau update")
		}
		if updated.PageId != "page_1" {
			t.Errorf("PageId = %q", updated.PageId)
		}
	})
}
