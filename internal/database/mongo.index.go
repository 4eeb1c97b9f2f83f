// Package database - Index cho các collection của hệ thống inbox (unique, partial, compound).
package database

import (
	"context"
	"strings"

	"page_inbox/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateInboxIndexes tạo các index cho các collection inbox.
// Gọi một lần khi khởi động server, sau khi đã đăng ký collections.
func CreateInboxIndexes(ctx context.Context, db *mongo.Database) error {
	// auth_users: email unique — mỗi email chỉ một tài khoản
	users := db.Collection(global.MongoDB_ColNames.Users)
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("user_email_unique").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// auth_users: token — tra cứu user theo token khi xác thực
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetName("user_token").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// fb_pages: pageId unique trong các trang đang active — một trang chỉ kết nối một lần
	fbPages := db.Collection(global.MongoDB_ColNames.FbPages)
	if _, err := fbPages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "pageId", Value: 1}},
		Options: options.Index().
			SetName("fb_page_pageid_active_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "isActive", Value: true}}),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// fb_pages: (accountId, isActive) — liệt kê các trang của một tài khoản
	if _, err := fbPages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "accountId", Value: 1},
			{Key: "isActive", Value: 1},
		},
		Options: options.Index().SetName("fb_page_account_active"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// fb_conversations: (pageId, customerId, sessionKey) unique — chốt chặn cho race findOrCreate
	fbConversations := db.Collection(global.MongoDB_ColNames.FbConversations)
	if _, err := fbConversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "pageId", Value: 1},
			{Key: "customerId", Value: 1},
			{Key: "sessionKey", Value: 1},
		},
		Options: options.Index().SetName("fb_conversation_session_unique").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// fb_conversations: (pageId, lastMessageAt desc) — danh sách hội thoại theo tin mới nhất
	if _, err := fbConversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "pageId", Value: 1},
			{Key: "lastMessageAt", Value: -1},
		},
		Options: options.Index().SetName("fb_conversation_page_lastmsg"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// fb_conversations: (pageId, status, lastMessageAt desc) — lọc theo trạng thái hội thoại
	if _, err := fbConversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "pageId", Value: 1},
			{Key: "status", Value: 1},
			{Key: "lastMessageAt", Value: -1},
		},
		Options: options.Index().SetName("fb_conversation_page_status_lastmsg"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// fb_messages: messageId unique — chống ghi trùng khi webhook gửi lại
	fbMessages := db.Collection(global.MongoDB_ColNames.FbMessages)
	if _, err := fbMessages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "messageId", Value: 1}},
		Options: options.Index().SetName("fb_message_messageid_unique").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// fb_messages: (conversationId, timestamp desc) — lịch sử tin nhắn của một hội thoại
	if _, err := fbMessages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "conversationId", Value: 1},
			{Key: "timestamp", Value: -1},
		},
		Options: options.Index().SetName("fb_message_conversation_ts"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// fb_messages: (senderId, timestamp) — cập nhật receipt delivered/read theo watermark
	if _, err := fbMessages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "senderId", Value: 1},
			{Key: "timestamp", Value: 1},
		},
		Options: options.Index().SetName("fb_message_sender_ts"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// webhook_logs: (source, receivedAt desc) — tra cứu log webhook gần nhất theo nguồn
	webhookLogs := db.Collection(global.MongoDB_ColNames.WebhookLogs)
	if _, err := webhookLogs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "source", Value: 1},
			{Key: "receivedAt", Value: -1},
		},
		Options: options.Index().SetName("webhook_log_source_received"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
