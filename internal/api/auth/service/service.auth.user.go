// Package authsvc - service người dùng (User).
package authsvc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	authdto "page_inbox/internal/api/auth/dto"
	models "page_inbox/internal/api/auth/models"
	basesvc "page_inbox/internal/api/base/service"
	"page_inbox/internal/common"
	"page_inbox/internal/global"
	"page_inbox/internal/logger"
	"page_inbox/internal/utility"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserService là cấu trúc chứa các phương thức liên quan đến người dùng
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
}

// NewUserService tạo mới UserService
func NewUserService() (*UserService, error) {
	userCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}

	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](userCollection),
	}, nil
}

// Register đăng ký người dùng mới với email và mật khẩu
func (s *UserService) Register(ctx context.Context, input *authdto.UserRegisterInput) (*models.User, error) {
	if err := utility.ValidateEmail(input.Email); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, "Email không hợp lệ", common.StatusBadRequest, nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Không thể mã hóa mật khẩu", common.StatusInternalServerError, err)
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashedPassword),
	}

	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) {
			return nil, common.NewError(common.ErrCodeBusinessOperation, "Email đã được sử dụng", common.StatusConflict, nil)
		}
		return nil, err
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"user_id": created.ID.Hex(),
		"email":   created.Email,
	}).Info("Register: Đăng ký người dùng thành công")

	created.Password = ""
	return &created, nil
}

// Login đăng nhập bằng email và mật khẩu, trả về user kèm token mới
func (s *UserService) Login(ctx context.Context, input *authdto.UserLoginInput) (*models.User, error) {
	user, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": input.Email}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrCodeAuthCredentials, "Email hoặc mật khẩu không đúng", common.StatusUnauthorized, nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, common.NewError(common.ErrCodeAuthCredentials, "Email hoặc mật khẩu không đúng", common.StatusUnauthorized, nil)
	}

	if user.IsBlock {
		return nil, common.NewError(common.ErrCodeAuthCredentials, "Tài khoản đã bị khóa: "+user.BlockNote, common.StatusForbidden, nil)
	}

	// Sinh token mới cho lần đăng nhập này
	rdNumber := rand.Intn(100)
	currentTime := time.Now().Unix()
	tokenMap, err := utility.CreateToken(global.ServerConfig.JwtSecret, user.ID.Hex(), strconv.FormatInt(currentTime, 16), strconv.Itoa(rdNumber))
	if err != nil {
		return nil, err
	}

	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"token": tokenMap["token"],
		},
	}
	updatedUser, err := s.BaseServiceMongoImpl.UpdateById(ctx, user.ID, updateData)
	if err != nil {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"user_id": user.ID.Hex(),
			"error":   err.Error(),
		}).Error("Login: Lỗi khi cập nhật token vào user")
		return nil, err
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"user_id": updatedUser.ID.Hex(),
		"email":   updatedUser.Email,
	}).Info("Login: Đăng nhập thành công")

	updatedUser.Password = ""
	return &updatedUser, nil
}

// Logout đăng xuất người dùng (xóa token hiện tại).
// Trả về token vừa bị thu hồi để caller gỡ nó khỏi cache xác thực.
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID) (string, error) {
	user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
	if err != nil {
		return "", err
	}
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"token": "",
		},
	}
	if _, err := s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData); err != nil {
		return "", err
	}
	return user.Token, nil
}

// ChangeInfo cập nhật thông tin cơ bản của người dùng
func (s *UserService) ChangeInfo(ctx context.Context, userID primitive.ObjectID, input *authdto.UserChangeInfoInput) (*models.User, error) {
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"name": input.Name,
		},
	}
	updatedUser, err := s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	if err != nil {
		return nil, err
	}
	updatedUser.Password = ""
	return &updatedUser, nil
}

// BlockUser khóa người dùng theo email, đồng thời hủy token đang dùng.
// Trả về token vừa bị thu hồi để caller gỡ nó khỏi cache xác thực.
func (s *UserService) BlockUser(ctx context.Context, input *authdto.BlockUserInput) (string, error) {
	user, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": input.Email}, nil)
	if err != nil {
		return "", err
	}
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"isBlock":   true,
			"blockNote": input.Note,
			"token":     "",
		},
	}
	if _, err := s.BaseServiceMongoImpl.UpdateById(ctx, user.ID, updateData); err != nil {
		return "", err
	}
	logger.GetAppLogger().WithFields(logrus.Fields{
		"email": input.Email,
		"note":  input.Note,
	}).Warn("BlockUser: Đã khóa người dùng")
	return user.Token, nil
}

// UnBlockUser mở khóa người dùng theo email
func (s *UserService) UnBlockUser(ctx context.Context, input *authdto.UnBlockUserInput) error {
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"isBlock":   false,
			"blockNote": "",
		},
	}
	_, err := s.BaseServiceMongoImpl.UpdateOne(ctx, bson.M{"email": input.Email}, updateData, nil)
	return err
}
