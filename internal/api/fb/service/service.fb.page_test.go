// Package fbsvc - Test ngắt kết nối trang với mock deployment của mongo driver.
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

// Disconnect là soft delete: update set isActive=false trong khi filter yêu cầu
// isActive=true. Update thành công không được báo lỗi 404 cho caller.
func TestDisconnectPage_SuccessfulUpdateIsNotAnError(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("disconnect", func(mt *mtest.T) {
		svc := &FbPageService{
			BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[fbmodels.FbPage](mt.Coll),
		}

		accountID := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "pageId", Value: "page_1"},
				{Key: "accountId", Value: accountID},
				{Key: "isActive", Value: false},
			}},
		})

		if err := svc.DisconnectPage(context.Background(), accountID, "page_1"); err != nil {
			t.Fatalf("DisconnectPage trả lỗi dù update thành công: %v", err)
		}
	})
}
