package fbsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "page_inbox/internal/api/base/service"
	fbclient "page_inbox/internal/api/fb/client"
	fbdto "page_inbox/internal/api/fb/dto"
	fbmodels "page_inbox/internal/api/fb/models"
	"page_inbox/internal/common"
	"page_inbox/internal/global"
	"page_inbox/internal/logger"

	"github.com/sirupsen/logrus"
)

// FbPageService quản lý credential của các trang Facebook đã kết nối.
// Credential được đọc lại từ DB cho mỗi request, không cache process-wide,
// để việc reconnect/rotate token có hiệu lực ngay với các request đang bay.
type FbPageService struct {
	*basesvc.BaseServiceMongoImpl[fbmodels.FbPage]
	graph fbclient.GraphAPI
}

// NewFbPageService tạo mới FbPageService với Graph client mặc định
func NewFbPageService() (*FbPageService, error) {
	return NewFbPageServiceWithClient(fbclient.NewClient(global.ServerConfig))
}

// NewFbPageServiceWithClient tạo FbPageService với Graph client tùy biến (phục vụ test)
func NewFbPageServiceWithClient(graph fbclient.GraphAPI) (*FbPageService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.FbPages)
	if !exist {
		return nil, fmt.Errorf("failed to get fb_pages collection: %v", common.ErrNotFound)
	}
	return &FbPageService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[fbmodels.FbPage](coll),
		graph:                graph,
	}, nil
}

// FindActiveByPageID tìm credential đang active của một trang theo pageId
func (s *FbPageService) FindActiveByPageID(ctx context.Context, pageId string) (fbmodels.FbPage, error) {
	return s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"pageId": pageId, "isActive": true}, nil)
}

// ListActiveByAccount liệt kê các trang đang kết nối của một tài khoản
func (s *FbPageService) ListActiveByAccount(ctx context.Context, accountID primitive.ObjectID) ([]fbmodels.FbPage, error) {
	return s.BaseServiceMongoImpl.Find(ctx, bson.M{"accountId": accountID, "isActive": true}, nil)
}

// AvailablePages đổi token và trả về danh sách trang mà tài khoản có quyền MANAGE
// (phục vụ picker trong luồng OAuth)
func (s *FbPageService) AvailablePages(ctx context.Context, input *fbdto.FbPageAvailableInput) ([]fbclient.GraphPage, error) {
	longLivedToken, err := s.graph.ExchangeToken(ctx, input.AccessToken)
	if err != nil {
		return nil, err
	}
	return s.graph.ListPagesForAccount(ctx, longLivedToken)
}

// ConnectPage kết nối một trang Facebook vào tài khoản:
// đổi token ngắn hạn lấy dài hạn, kiểm tra quyền MANAGE, lấy thông tin trang,
// chặn kết nối trùng với tài khoản khác (409), subscribe webhook rồi upsert credential.
func (s *FbPageService) ConnectPage(ctx context.Context, accountID primitive.ObjectID, input *fbdto.FbPageConnectInput) (*fbmodels.FbPage, error) {
	longLivedToken, err := s.graph.ExchangeToken(ctx, input.AccessToken)
	if err != nil {
		return nil, err
	}

	pages, err := s.graph.ListPagesForAccount(ctx, longLivedToken)
	if err != nil {
		return nil, err
	}
	var selected *fbclient.GraphPage
	for i := range pages {
		if pages[i].ID == input.PageId {
			selected = &pages[i]
			break
		}
	}
	if selected == nil {
		return nil, common.NewError(common.ErrCodeBusinessState,
			"Không tìm thấy trang hoặc tài khoản không có quyền quản lý trang này", common.StatusNotFound, nil)
	}

	pageInfo, err := s.graph.GetPageInfo(ctx, input.PageId, selected.AccessToken)
	if err != nil {
		return nil, err
	}

	// Một trang đang active chỉ được thuộc về một tài khoản
	existing, err := s.FindActiveByPageID(ctx, input.PageId)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if err == nil && existing.AccountID != accountID {
		return nil, common.NewError(common.ErrCodeBusinessState,
			"Trang này đang được kết nối với một tài khoản khác", common.StatusConflict, nil)
	}

	if _, err := s.graph.SubscribeWebhook(ctx, input.PageId, selected.AccessToken); err != nil {
		return nil, err
	}

	set := map[string]interface{}{
		"accountId":       accountID,
		"pageId":          pageInfo.ID,
		"pageName":        pageInfo.Name,
		"pageAccessToken": selected.AccessToken,
		"category":        pageInfo.Category,
		"about":           pageInfo.About,
		"website":         pageInfo.Website,
		"phone":           pageInfo.Phone,
		"webhookVerified": true,
		"isActive":        true,
		"lastSyncAt":      time.Now().UnixMilli(),
	}
	if pageInfo.Picture != nil {
		set["pageProfilePic"] = pageInfo.Picture.Data.Url
	}
	if len(pageInfo.Emails) > 0 {
		set["email"] = pageInfo.Emails[0]
	}

	updateData := &basesvc.UpdateData{Set: set}
	page, err := s.BaseServiceMongoImpl.Upsert(ctx, bson.M{"pageId": input.PageId, "isActive": true}, updateData)
	if err != nil {
		return nil, err
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"page_id":    page.PageId,
		"page_name":  page.PageName,
		"account_id": accountID.Hex(),
	}).Info("ConnectPage: Kết nối trang thành công")

	return &page, nil
}

// DisconnectPage ngắt kết nối trang: chỉ đánh dấu isActive=false, không xóa bản ghi
func (s *FbPageService) DisconnectPage(ctx context.Context, accountID primitive.ObjectID, pageId string) error {
	filter := bson.M{"pageId": pageId, "accountId": accountID, "isActive": true}
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"isActive":       false,
			"disconnectedAt": time.Now().UnixMilli(),
		},
	}
	_, err := s.BaseServiceMongoImpl.UpdateOne(ctx, filter, updateData, nil)
	if err != nil {
		return err
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"page_id":    pageId,
		"account_id": accountID.Hex(),
	}).Info("DisconnectPage: Đã ngắt kết nối trang")
	return nil
}

// UpdateToken cập nhật access token của trang đang active
func (s *FbPageService) UpdateToken(ctx context.Context, input *fbdto.FbPageUpdateTokenInput) (*fbmodels.FbPage, error) {
	page, err := s.FindActiveByPageID(ctx, input.PageId)
	if err != nil {
		return nil, err
	}
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{"pageAccessToken": input.PageAccessToken},
	}
	updatedPage, err := s.BaseServiceMongoImpl.UpdateById(ctx, page.ID, updateData)
	if err != nil {
		return nil, err
	}
	return &updatedPage, nil
}
