package fbsvc

import (
	"context"
	"encoding/json"

	fbclient "page_inbox/internal/api/fb/client"
	fbmodels "page_inbox/internal/api/fb/models"
	"page_inbox/internal/common"
	"page_inbox/internal/logger"

	"github.com/sirupsen/logrus"
)

// EnrichedLastMessage preview tin nhắn gần nhất của một hội thoại
type EnrichedLastMessage struct {
	Message     string `json:"message"`
	CreatedTime string `json:"created_time"`
}

// EnrichedConversation một hội thoại lấy trực tiếp từ Graph API,
// đã gắn danh tính người tham gia và preview tin nhắn gần nhất
type EnrichedConversation struct {
	ID           string                    `json:"id"`
	Participant  fbmodels.ResolvedIdentity `json:"participant"`
	LastMessage  *EnrichedLastMessage      `json:"lastMessage,omitempty"`
	UnreadCount  int64                     `json:"unreadCount"`
	UpdatedTime  string                    `json:"updated_time"`
	CanReply     bool                      `json:"can_reply"`
	MessageCount int64                     `json:"message_count"`
}

// EnrichedMessage một tin nhắn lấy trực tiếp từ Graph API, đã gắn danh tính người gửi
type EnrichedMessage struct {
	ID          string                    `json:"id"`
	Message     string                    `json:"message"`
	From        fbmodels.ResolvedIdentity `json:"from"`
	CreatedTime string                    `json:"created_time"`
	Attachments json.RawMessage           `json:"attachments,omitempty"`
	IsFromPage  bool                      `json:"isFromPage"`
}

// ConversationFetcher là đường reconciliation on-demand: kéo hội thoại/tin nhắn
// trực tiếp từ Graph API khi mirror cục bộ chưa có hoặc đã cũ.
// Nguyên tắc degraded-per-item: một hội thoại enrich lỗi thì trả về entry
// tối thiểu thay vì bị loại khỏi danh sách - kết quả một phần luôn tốt hơn rỗng.
type ConversationFetcher struct {
	graph    fbclient.GraphAPI
	resolver *IdentityResolver
	log      *logrus.Logger
}

// NewConversationFetcher tạo ConversationFetcher với Graph client cho trước
func NewConversationFetcher(graph fbclient.GraphAPI) *ConversationFetcher {
	return &ConversationFetcher{
		graph:    graph,
		resolver: NewIdentityResolver(graph),
		log:      logger.GetAppLogger(),
	}
}

// ListConversations lấy danh sách hội thoại của trang từ Graph API.
// Lỗi listing top-level được dịch thành thông điệp hành động được
// (token hết hạn / thiếu quyền / page id sai) qua error taxonomy chung;
// lỗi enrich từng hội thoại chỉ làm degraded entry đó.
func (f *ConversationFetcher) ListConversations(ctx context.Context, page fbmodels.FbPage, limit int) ([]EnrichedConversation, error) {
	if limit <= 0 {
		limit = 20
	}
	rawConversations, err := f.graph.ListConversations(ctx, page.PageId, page.PageAccessToken, limit)
	if err != nil {
		return nil, err
	}

	conversations := make([]EnrichedConversation, 0, len(rawConversations))
	for _, conv := range rawConversations {
		enriched, ok := f.enrichConversation(ctx, page, conv)
		if !ok {
			// Không tìm được participant ngoài trang thì bỏ qua
			// (hội thoại chỉ có chính trang tham gia)
			continue
		}
		conversations = append(conversations, enriched)
	}

	f.log.WithFields(logrus.Fields{
		"page_id": page.PageId,
		"total":   len(conversations),
	}).Info("ListConversations: Đã lấy danh sách hội thoại từ Graph API")
	return conversations, nil
}

// enrichConversation gắn danh tính participant và preview tin nhắn cho một hội thoại.
// Mọi bước lỗi đều degraded cục bộ, không trả lỗi lên caller.
func (f *ConversationFetcher) enrichConversation(ctx context.Context, page fbmodels.FbPage, conv fbclient.GraphConversation) (EnrichedConversation, bool) {
	var participant *fbclient.GraphParticipant
	for i := range conv.Participants.Data {
		if conv.Participants.Data[i].ID != page.PageId {
			participant = &conv.Participants.Data[i]
			break
		}
	}
	if participant == nil {
		return EnrichedConversation{}, false
	}

	// Danh tính: resolver tự degraded về placeholder, nhưng nếu participant
	// đã có sẵn tên thô thì ưu tiên giữ tên đó khi resolver thất bại
	identity := f.resolver.Resolve(ctx, participant.ID, page, conv.ID)
	if identity.Name == "Unknown User" && participant.Name != "" {
		firstName, lastName := SplitDisplayName(participant.Name)
		identity.Name = participant.Name
		identity.FirstName = firstName
		identity.LastName = lastName
	}

	// Preview: lấy tin nhắn gần nhất, lỗi thì thay bằng placeholder
	lastMessage := &EnrichedLastMessage{
		Message:     "No recent messages",
		CreatedTime: conv.UpdatedTime,
	}
	messages, err := f.graph.ListMessages(ctx, conv.ID, page.PageAccessToken, 1)
	if err != nil {
		f.log.WithFields(logrus.Fields{
			"conversation_id": conv.ID,
		}).Debug("enrichConversation: Không lấy được tin nhắn gần nhất")
	} else if len(messages) > 0 {
		text := messages[0].Message
		if text == "" {
			text = "[Attachment]"
		}
		lastMessage = &EnrichedLastMessage{
			Message:     text,
			CreatedTime: messages[0].CreatedTime,
		}
	}

	return EnrichedConversation{
		ID:           conv.ID,
		Participant:  identity,
		LastMessage:  lastMessage,
		UnreadCount:  conv.UnreadCount,
		UpdatedTime:  conv.UpdatedTime,
		CanReply:     conv.CanReply,
		MessageCount: conv.MessageCount,
	}, true
}

// ListMessages lấy tin nhắn của một hội thoại từ Graph API.
// Caller không biết trước hội thoại thuộc trang nào nên thử lần lượt từng
// credential, dừng ở trang đầu tiên truy cập được. Không trang nào truy cập
// được là một lỗi riêng, phân biệt với "hội thoại không có tin nhắn".
// Kết quả trả về theo thứ tự thời gian tăng dần (phục vụ hiển thị).
func (f *ConversationFetcher) ListMessages(ctx context.Context, conversationId string, pages []fbmodels.FbPage, limit int) ([]EnrichedMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	if len(pages) == 0 {
		return nil, common.NewError(common.ErrCodeBusinessState,
			"Tài khoản chưa kết nối trang Facebook nào", common.StatusForbidden, nil)
	}

	var rawMessages []fbclient.GraphMessage
	var accessPage *fbmodels.FbPage
	for i := range pages {
		messages, err := f.graph.ListMessages(ctx, conversationId, pages[i].PageAccessToken, limit)
		if err != nil {
			f.log.WithFields(logrus.Fields{
				"conversation_id": conversationId,
				"page_id":         pages[i].PageId,
			}).Debug("ListMessages: Trang không truy cập được hội thoại, thử trang tiếp theo")
			continue
		}
		rawMessages = messages
		accessPage = &pages[i]
		break
	}
	if accessPage == nil {
		return nil, common.NewError(common.ErrCodeBusinessState,
			"Không có trang nào truy cập được hội thoại này", common.StatusForbidden, nil)
	}

	enriched := make([]EnrichedMessage, 0, len(rawMessages))
	for _, msg := range rawMessages {
		enriched = append(enriched, f.enrichMessage(ctx, *accessPage, msg))
	}

	// Graph trả mới nhất trước; đảo lại thành thứ tự thời gian
	for i, j := 0, len(enriched)-1; i < j; i, j = i+1, j-1 {
		enriched[i], enriched[j] = enriched[j], enriched[i]
	}
	return enriched, nil
}

// enrichMessage gắn danh tính người gửi cho một tin nhắn, best-effort:
// resolver thất bại thì dựng danh tính từ tên thô đã có trong payload
func (f *ConversationFetcher) enrichMessage(ctx context.Context, page fbmodels.FbPage, msg fbclient.GraphMessage) EnrichedMessage {
	text := msg.Message
	if text == "" {
		text = "[Attachment]"
	}

	identity := fbmodels.ResolvedIdentity{
		FirstName: "Unknown",
		LastName:  "User",
		Name:      "Unknown",
	}
	isFromPage := false
	if msg.From != nil && msg.From.ID != "" {
		isFromPage = msg.From.ID == page.PageId
		if isFromPage {
			identity = fbmodels.ResolvedIdentity{
				ID:   msg.From.ID,
				Name: page.PageName,
			}
		} else {
			identity = f.resolver.Resolve(ctx, msg.From.ID, page, "")
			if identity.Name == "Unknown User" && msg.From.Name != "" {
				firstName, lastName := SplitDisplayName(msg.From.Name)
				identity.Name = msg.From.Name
				identity.FirstName = firstName
				identity.LastName = lastName
			}
		}
	}

	return EnrichedMessage{
		ID:          msg.ID,
		Message:     text,
		From:        identity,
		CreatedTime: msg.CreatedTime,
		Attachments: msg.Attachments,
		IsFromPage:  isFromPage,
	}
}
