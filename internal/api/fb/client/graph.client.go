// Package fbclient cung cấp client gọi Facebook Graph API.
// Mỗi method là một lời gọi HTTP mỏng, không chứa business logic;
// các service ở tầng trên chịu trách nhiệm compose và xử lý fallback.
package fbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"page_inbox/config"
	"page_inbox/internal/common"
	"page_inbox/internal/logger"
	"page_inbox/internal/utility"

	"github.com/sirupsen/logrus"
)

// GraphError là cấu trúc lỗi chuẩn của Graph API
type GraphError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	Subcode   int    `json:"error_subcode"`
	FbTraceID string `json:"fbtrace_id"`
}

type graphErrorEnvelope struct {
	Error *GraphError `json:"error"`
}

// GraphPicture ảnh đại diện trả về dạng {data: {url}}
type GraphPicture struct {
	Data struct {
		Url string `json:"url"`
	} `json:"data"`
}

// GraphPage thông tin một trang từ /me/accounts hoặc /{pageId}
type GraphPage struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	AccessToken string        `json:"access_token"`
	Category    string        `json:"category"`
	About       string        `json:"about"`
	Website     string        `json:"website"`
	Phone       string        `json:"phone"`
	Emails      []string      `json:"emails"`
	Picture     *GraphPicture `json:"picture"`
	Tasks       []string      `json:"tasks"`
}

// GraphParticipant một người tham gia hội thoại
type GraphParticipant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GraphParticipantList danh sách participants theo envelope {data: [...]}
type GraphParticipantList struct {
	Data []GraphParticipant `json:"data"`
}

// GraphConversation một hội thoại từ /{pageId}/conversations
type GraphConversation struct {
	ID           string               `json:"id"`
	UpdatedTime  string               `json:"updated_time"`
	Participants GraphParticipantList `json:"participants"`
	CanReply     bool                 `json:"can_reply"`
	IsSubscribed bool                 `json:"is_subscribed"`
	MessageCount int64                `json:"message_count"`
	UnreadCount  int64                `json:"unread_count"`
}

// GraphFrom người gửi của một tin nhắn
type GraphFrom struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GraphMessage một tin nhắn từ /{conversationId}/messages
type GraphMessage struct {
	ID          string          `json:"id"`
	Message     string          `json:"message"`
	From        *GraphFrom      `json:"from"`
	CreatedTime string          `json:"created_time"`
	Attachments json.RawMessage `json:"attachments,omitempty"`
}

// GraphProfile profile người dùng từ /{userId}
type GraphProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ProfilePic string `json:"profile_pic"`
	Locale     string `json:"locale"`
	Timezone   *int   `json:"timezone"`
	Gender     string `json:"gender"`
}

// SendResponse kết quả gửi tin nhắn từ /me/messages
type SendResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// Các trường subscribe webhook cho trang
const webhookSubscribedFields = "messages,messaging_postbacks,messaging_optins,message_deliveries,message_reads"

// GraphAPI là interface cho Graph API, tách ra để service mock được trong test
type GraphAPI interface {
	ExchangeToken(ctx context.Context, shortLivedToken string) (string, error)
	ListPagesForAccount(ctx context.Context, userAccessToken string) ([]GraphPage, error)
	GetPageInfo(ctx context.Context, pageId string, pageAccessToken string) (*GraphPage, error)
	SubscribeWebhook(ctx context.Context, pageId string, pageAccessToken string) (bool, error)
	ListConversations(ctx context.Context, pageId string, pageAccessToken string, limit int) ([]GraphConversation, error)
	ListMessages(ctx context.Context, conversationId string, pageAccessToken string, limit int) ([]GraphMessage, error)
	GetConversationParticipants(ctx context.Context, conversationId string, pageAccessToken string) ([]GraphParticipant, error)
	SendMessage(ctx context.Context, pageAccessToken string, recipientId string, message map[string]interface{}) (*SendResponse, error)
	GetUserProfile(ctx context.Context, userId string, pageAccessToken string, fields string) (*GraphProfile, error)
	GetProfilePicture(ctx context.Context, userId string, pageAccessToken string) (string, error)
}

// Client là HTTP client gọi Graph API
type Client struct {
	baseURL    string
	appID      string
	appSecret  string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewClient tạo Graph API client từ cấu hình server
func NewClient(cfg *config.Configuration) *Client {
	timeout := time.Duration(cfg.FbGraphTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.FbGraphBaseURL,
		appID:      cfg.FbAppID,
		appSecret:  cfg.FbAppSecret,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.GetAppLogger(),
	}
}

// get gọi GET tới Graph API và decode JSON kết quả vào out
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return common.NewError(common.ErrCodeUpstream, "Không thể tạo request tới Graph API", common.StatusInternalServerError, err)
	}
	return c.do(req, out)
}

// post gọi POST với body JSON tới Graph API
func (c *Client) post(ctx context.Context, path string, params url.Values, body interface{}, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return common.NewError(common.ErrCodeUpstream, "Không thể encode payload gửi Graph API", common.StatusInternalServerError, err)
	}
	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return common.NewError(common.ErrCodeUpstream, "Không thể tạo request tới Graph API", common.StatusInternalServerError, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do thực thi request, dịch lỗi Graph về error taxonomy của hệ thống
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return common.NewError(common.ErrCodeUpstream, "Không thể kết nối tới Facebook Graph API", common.StatusBadGateway, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.NewError(common.ErrCodeUpstream, "Không thể đọc phản hồi từ Graph API", common.StatusBadGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope graphErrorEnvelope
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error != nil {
			c.log.WithFields(logrus.Fields{
				"path":        req.URL.Path,
				"fb_code":     envelope.Error.Code,
				"fb_subcode":  envelope.Error.Subcode,
				"fb_trace_id": envelope.Error.FbTraceID,
			}).Warn("Graph API trả về lỗi")
			return common.ConvertGraphError(envelope.Error.Code, envelope.Error.Message)
		}
		return common.NewError(common.ErrCodeUpstream,
			fmt.Sprintf("Graph API trả về HTTP %d", resp.StatusCode), common.StatusBadGateway, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return common.NewError(common.ErrCodeUpstream, "Phản hồi Graph API không đúng định dạng", common.StatusBadGateway, err)
	}
	return nil
}

// ExchangeToken đổi short-lived token lấy long-lived user access token
func (c *Client) ExchangeToken(ctx context.Context, shortLivedToken string) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", c.appID)
	params.Set("client_secret", c.appSecret)
	params.Set("fb_exchange_token", shortLivedToken)

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.get(ctx, "/oauth/access_token", params, &result); err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

// ListPagesForAccount lấy danh sách trang của tài khoản, chỉ giữ trang có quyền MANAGE
func (c *Client) ListPagesForAccount(ctx context.Context, userAccessToken string) ([]GraphPage, error) {
	params := url.Values{}
	params.Set("access_token", userAccessToken)
	params.Set("fields", "id,name,access_token,category,about,website,phone,emails,picture{url},tasks")

	var result struct {
		Data []GraphPage `json:"data"`
	}
	if err := c.get(ctx, "/me/accounts", params, &result); err != nil {
		return nil, err
	}

	pages := make([]GraphPage, 0, len(result.Data))
	for _, page := range result.Data {
		if utility.Contains(page.Tasks, "MANAGE") {
			pages = append(pages, page)
		}
	}
	return pages, nil
}

// GetPageInfo lấy thông tin chi tiết của một trang
func (c *Client) GetPageInfo(ctx context.Context, pageId string, pageAccessToken string) (*GraphPage, error) {
	params := url.Values{}
	params.Set("access_token", pageAccessToken)
	params.Set("fields", "id,name,category,about,website,phone,emails,picture{url},fan_count,is_verified")

	var page GraphPage
	if err := c.get(ctx, "/"+pageId, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SubscribeWebhook đăng ký trang nhận webhook messaging events
func (c *Client) SubscribeWebhook(ctx context.Context, pageId string, pageAccessToken string) (bool, error) {
	params := url.Values{}
	params.Set("access_token", pageAccessToken)

	body := map[string]interface{}{
		"subscribed_fields": webhookSubscribedFields,
	}
	var result struct {
		Success bool `json:"success"`
	}
	if err := c.post(ctx, "/"+pageId+"/subscribed_apps", params, body, &result); err != nil {
		return false, err
	}
	return result.Success, nil
}

// ListConversations lấy danh sách hội thoại của trang
func (c *Client) ListConversations(ctx context.Context, pageId string, pageAccessToken string, limit int) ([]GraphConversation, error) {
	params := url.Values{}
	params.Set("access_token", pageAccessToken)
	params.Set("fields", "id,updated_time,participants,can_reply,is_subscribed,message_count,unread_count")
	params.Set("limit", strconv.Itoa(limit))

	var result struct {
		Data []GraphConversation `json:"data"`
	}
	if err := c.get(ctx, "/"+pageId+"/conversations", params, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// ListMessages lấy danh sách tin nhắn của một hội thoại
func (c *Client) ListMessages(ctx context.Context, conversationId string, pageAccessToken string, limit int) ([]GraphMessage, error) {
	params := url.Values{}
	params.Set("access_token", pageAccessToken)
	params.Set("fields", "id,message,from,created_time,attachments")
	params.Set("limit", strconv.Itoa(limit))

	var result struct {
		Data []GraphMessage `json:"data"`
	}
	if err := c.get(ctx, "/"+conversationId+"/messages", params, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetConversationParticipants lấy danh sách người tham gia một hội thoại
func (c *Client) GetConversationParticipants(ctx context.Context, conversationId string, pageAccessToken string) ([]GraphParticipant, error) {
	params := url.Values{}
	params.Set("access_token", pageAccessToken)
	params.Set("fields", "participants")

	var result struct {
		Participants GraphParticipantList `json:"participants"`
	}
	if err := c.get(ctx, "/"+conversationId, params, &result); err != nil {
		return nil, err
	}
	return result.Participants.Data, nil
}

// SendMessage gửi tin nhắn tới một người nhận qua /me/messages
func (c *Client) SendMessage(ctx context.Context, pageAccessToken string, recipientId string, message map[string]interface{}) (*SendResponse, error) {
	params := url.Values{}
	params.Set("access_token", pageAccessToken)

	body := map[string]interface{}{
		"recipient":      map[string]string{"id": recipientId},
		"message":        message,
		"messaging_type": "RESPONSE",
	}
	var result SendResponse
	if err := c.post(ctx, "/me/messages", params, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUserProfile lấy profile người dùng với tập fields chỉ định
func (c *Client) GetUserProfile(ctx context.Context, userId string, pageAccessToken string, fields string) (*GraphProfile, error) {
	params := url.Values{}
	params.Set("access_token", pageAccessToken)
	params.Set("fields", fields)

	var profile GraphProfile
	if err := c.get(ctx, "/"+userId, params, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfilePicture lấy URL ảnh đại diện, thường vẫn lấy được kể cả khi
// các field profile khác bị từ chối quyền
func (c *Client) GetProfilePicture(ctx context.Context, userId string, pageAccessToken string) (string, error) {
	params := url.Values{}
	params.Set("access_token", pageAccessToken)
	params.Set("redirect", "false")
	params.Set("height", "200")
	params.Set("width", "200")

	var result struct {
		Data struct {
			Url string `json:"url"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/"+userId+"/picture", params, &result); err != nil {
		return "", err
	}
	return result.Data.Url, nil
}

// TextMessage tạo payload tin nhắn văn bản
func TextMessage(text string) map[string]interface{} {
	return map[string]interface{}{"text": text}
}

// ImageMessage tạo payload tin nhắn ảnh đính kèm
func ImageMessage(imageUrl string) map[string]interface{} {
	return map[string]interface{}{
		"attachment": map[string]interface{}{
			"type": "image",
			"payload": map[string]interface{}{
				"url":         imageUrl,
				"is_reusable": true,
			},
		},
	}
}

// TemplateMessage tạo payload tin nhắn template
func TemplateMessage(templatePayload map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"attachment": map[string]interface{}{
			"type":    "template",
			"payload": templatePayload,
		},
	}
}
