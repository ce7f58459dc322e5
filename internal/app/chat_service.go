package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"chathdi/internal/ai"
	"chathdi/internal/model"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageEmpty         = errors.New("message content is empty")
)

const defaultTitleLength = 60

type ConversationStore interface {
	Upsert(conv *model.Conversation) error
	ListByUserID(userID string) ([]model.Conversation, error)
	GetByIDAndUserID(id, userID string) (*model.Conversation, error)
	DeleteByIDAndUserID(id, userID string) error
}

type AsyncConversationPublisher interface {
	Publish(ctx context.Context, conv model.Conversation) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, conversationID string) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, conversationID string, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, conversationID string) error
	MarkDirty(ctx context.Context, conversationID string) error
	IsDirty(ctx context.Context, conversationID string) (bool, error)
}

type ContextAssembler interface {
	AssembleContext(ctx context.Context, userID, query string) (Context, error)
}

type ChatCompleter interface {
	Complete(ctx context.Context, model string, messages []ai.ChatMessage) (*ai.ChatReply, error)
}

type ChatService struct {
	convStore    ConversationStore
	publisher    AsyncConversationPublisher
	historyCache HistoryCache
	assembler    ContextAssembler
	chatClient   ChatCompleter
	defaultModel string
}

func NewChatService(
	convStore ConversationStore,
	publisher AsyncConversationPublisher,
	historyCache HistoryCache,
	assembler ContextAssembler,
	chatClient ChatCompleter,
	defaultModel string,
) *ChatService {
	return &ChatService{
		convStore:    convStore,
		publisher:    publisher,
		historyCache: historyCache,
		assembler:    assembler,
		chatClient:   chatClient,
		defaultModel: defaultModel,
	}
}

type SendMessageInput struct {
	UserID         string
	ConversationID string // empty = start a new conversation
	Content        string
	Model          string
	Attachments    []model.Attachment
}

type SendMessageResult struct {
	Conversation model.Conversation  `json:"conversation"`
	Messages     []model.ChatMessage `json:"messages"`
	ContextUsed  bool                `json:"context_used"`
}

// SendMessage runs one conversation turn: replay stored context from history,
// retrieve fresh context for the new message, call the chat backend, and
// persist the updated conversation. Retrieval failure degrades to a turn
// without augmentation; a chat backend failure becomes an inline
// assistant-role error message with the conversation state preserved.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.UserID == "" {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	conv, err := s.resolveConversation(input.UserID, input.ConversationID, content)
	if err != nil {
		return nil, err
	}
	history := conv.DecodeMessages()

	userMessage := model.ChatMessage{
		ID:          "msg-" + uuid.NewString(),
		Role:        "user",
		Content:     content,
		Attachments: input.Attachments,
		Timestamp:   time.Now(),
	}

	apiMessages := buildAPIMessages(append(history, userMessage))
	lastContent := apiMessages[len(apiMessages)-1].Content

	ragCtx, err := s.assembler.AssembleContext(ctx, input.UserID, lastContent)
	if err != nil {
		log.Printf("context retrieval failed, continuing without augmentation: %v", err)
		ragCtx = Context{}
	}
	if ragCtx.Found {
		apiMessages[len(apiMessages)-1].Content += ragCtx.Suffix
		// Memoize retrieval onto the user message so regenerate/continue
		// replays the same context without re-querying.
		userMessage.RAGContext = ragCtx.Suffix
	}

	chatModel := strings.TrimSpace(input.Model)
	if chatModel == "" {
		chatModel = s.defaultModel
	}

	assistantMessage := model.ChatMessage{
		ID:        "msg-" + uuid.NewString(),
		Role:      "assistant",
		Timestamp: time.Now(),
	}
	reply, err := s.chatClient.Complete(ctx, chatModel, apiMessages)
	if err != nil {
		log.Printf("chat backend failed: %v", err)
		assistantMessage.Content = fmt.Sprintf("Sorry, the assistant is unavailable right now (%v). Please try again.", err)
	} else {
		assistantMessage.Content = strings.TrimSpace(reply.Response)
		assistantMessage.MediaType = reply.MediaType
		assistantMessage.MediaData = reply.MediaData
	}

	updated := append(history, userMessage, assistantMessage)
	if err := conv.SetMessages(updated); err != nil {
		return nil, fmt.Errorf("encode conversation messages failed: %w", err)
	}
	conv.UpdatedAt = time.Now()

	if err := s.persist(ctx, conv); err != nil {
		return nil, err
	}

	return &SendMessageResult{
		Conversation: *conv,
		Messages:     []model.ChatMessage{userMessage, assistantMessage},
		ContextUsed:  ragCtx.Found,
	}, nil
}

// persist invalidates the cache and hands the snapshot to the async worker,
// falling back to a direct write when the queue is unavailable.
func (s *ChatService) persist(ctx context.Context, conv *model.Conversation) error {
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, conv.ID)
		_ = s.historyCache.DeleteHistory(ctx, conv.ID)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, *conv); err == nil {
			return nil
		} else {
			log.Printf("publish conversation snapshot failed, writing directly: %v", err)
		}
	}
	return s.convStore.Upsert(conv)
}

func (s *ChatService) resolveConversation(userID, conversationID, firstContent string) (*model.Conversation, error) {
	if conversationID == "" {
		title := firstContent
		if len(title) > defaultTitleLength {
			title = title[:defaultTitleLength]
		}
		return &model.Conversation{
			ID:     uuid.NewString(),
			UserID: userID,
			Title:  title,
		}, nil
	}
	conv, err := s.convStore.GetByIDAndUserID(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// buildAPIMessages flattens the message log into the wire shape, folding
// attachment text and each message's memoized retrieval context into the
// content the model sees.
func buildAPIMessages(messages []model.ChatMessage) []ai.ChatMessage {
	out := make([]ai.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		content := msg.Content
		for _, att := range msg.Attachments {
			if att.Type != "file" {
				continue
			}
			if att.TextContext != "" {
				content += fmt.Sprintf("\n\n--- Content of %s ---\n%s\n--- End Content ---\n", att.Name, att.TextContext)
			} else if att.Content != "" {
				content += fmt.Sprintf("\n\n--- Content of %s ---\n%s\n--- End of %s ---", att.Name, att.Content, att.Name)
			}
		}
		if msg.RAGContext != "" {
			content += msg.RAGContext
		}
		out = append(out, ai.ChatMessage{Role: msg.Role, Content: content})
	}
	return out
}

func (s *ChatService) ListConversations(userID string) ([]model.Conversation, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.convStore.ListByUserID(userID)
}

// GetHistory returns the conversation message log, served from the cache when
// it is populated and not marked dirty.
func (s *ChatService) GetHistory(ctx context.Context, userID, conversationID string) ([]model.ChatMessage, error) {
	if userID == "" || conversationID == "" {
		return nil, ErrInvalidInput
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, conversationID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, conversationID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	conv, err := s.convStore.GetByIDAndUserID(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	messages := conv.DecodeMessages()

	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, conversationID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, conversationID, messages)
		}
	}
	return messages, nil
}

// SaveConversation upserts a client-driven snapshot (title edits, pinning,
// project moves).
func (s *ChatService) SaveConversation(ctx context.Context, conv *model.Conversation) error {
	if conv == nil || conv.UserID == "" {
		return ErrInvalidInput
	}
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if strings.TrimSpace(conv.Title) == "" {
		conv.Title = "New Chat"
	}
	conv.UpdatedAt = time.Now()
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, conv.ID)
		_ = s.historyCache.DeleteHistory(ctx, conv.ID)
	}
	return s.convStore.Upsert(conv)
}

func (s *ChatService) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if userID == "" || conversationID == "" {
		return ErrInvalidInput
	}
	conv, err := s.convStore.GetByIDAndUserID(conversationID, userID)
	if err != nil {
		return err
	}
	if conv == nil {
		return ErrConversationNotFound
	}
	if err := s.convStore.DeleteByIDAndUserID(conversationID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, conversationID)
	}
	return nil
}
