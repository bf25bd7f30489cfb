package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/surya16122114/roomies-radar/internal/models"
)

// MongoChatStore keeps one document per chat in the chats collection.
type MongoChatStore struct {
	coll *mongo.Collection
}

func NewMongoChatStore(coll *mongo.Collection) (*MongoChatStore, error) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chat_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("chat_id_idx"),
		},
		{
			// one chat per unordered user pair
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("pair_key_idx"),
		},
		{
			Keys:    bson.D{{Key: "user1_id", Value: 1}, {Key: "user2_id", Value: 1}},
			Options: options.Index().SetName("participants_idx"),
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}
	return &MongoChatStore{coll: coll}, nil
}

func (s *MongoChatStore) FindByPair(ctx context.Context, userA, userB string) (*models.Chat, error) {
	return s.findOne(ctx, bson.M{"pair_key": models.PairKey(userA, userB)})
}

func (s *MongoChatStore) FindByID(ctx context.Context, chatID string) (*models.Chat, error) {
	return s.findOne(ctx, bson.M{"chat_id": chatID})
}

func (s *MongoChatStore) findOne(ctx context.Context, filter bson.M) (*models.Chat, error) {
	var c models.Chat
	if err := s.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *MongoChatStore) Insert(ctx context.Context, chat *models.Chat) error {
	chat.PairKey = models.PairKey(chat.User1ID, chat.User2ID)
	if _, err := s.coll.InsertOne(ctx, chat); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrChatExists
		}
		return err
	}
	return nil
}

func (s *MongoChatStore) ListForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"user1_id": userID},
		bson.M{"user2_id": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "last_updated", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	chats := []models.Chat{}
	if err := cur.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *MongoChatStore) AppendMessage(ctx context.Context, chatID string, msg models.Message) ([]models.Message, error) {
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"last_updated": msg.Timestamp},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Chat
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"chat_id": chatID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return updated.Messages, nil
}

func (s *MongoChatStore) SetMessageStatus(ctx context.Context, chatID, messageID string, status models.MessageStatus) (*models.Message, error) {
	// Forward-only: read may be applied over delivered or read (idempotent);
	// delivered only over delivered.
	allowedFrom := bson.A{models.StatusDelivered}
	if status == models.StatusRead {
		allowedFrom = append(allowedFrom, models.StatusRead)
	}
	filter := bson.M{
		"chat_id": chatID,
		"messages": bson.M{"$elemMatch": bson.M{
			"message_id": messageID,
			"status":     bson.M{"$in": allowedFrom},
		}},
	}
	update := bson.M{"$set": bson.M{
		"messages.$[m].status": status,
		"last_updated":         time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetArrayFilters(options.ArrayFilters{Filters: []any{bson.M{"m.message_id": messageID}}})

	var updated models.Chat
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		for i := range updated.Messages {
			if updated.Messages[i].MessageID == messageID {
				return &updated.Messages[i], nil
			}
		}
		return nil, ErrMessageNotFound
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	return nil, s.classifyMiss(ctx, chatID, messageID, true)
}

func (s *MongoChatStore) RemoveMessage(ctx context.Context, chatID, messageID string) (*models.Message, error) {
	filter := bson.M{
		"chat_id":             chatID,
		"messages.message_id": messageID,
	}
	update := bson.M{
		"$pull": bson.M{"messages": bson.M{"message_id": messageID}},
		"$set":  bson.M{"last_updated": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.Chat
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.classifyMiss(ctx, chatID, messageID, false)
		}
		return nil, err
	}
	for i := range before.Messages {
		if before.Messages[i].MessageID == messageID {
			msg := before.Messages[i]
			return &msg, nil
		}
	}
	return nil, ErrMessageNotFound
}

func (s *MongoChatStore) Delete(ctx context.Context, chatID string) (*models.Chat, error) {
	var deleted models.Chat
	err := s.coll.FindOneAndDelete(ctx, bson.M{"chat_id": chatID}).Decode(&deleted)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &deleted, nil
}

// classifyMiss decides why a filtered message update matched nothing:
// missing chat, missing message, or (for status updates) a disallowed
// backwards transition.
func (s *MongoChatStore) classifyMiss(ctx context.Context, chatID, messageID string, statusUpdate bool) error {
	chat, err := s.FindByID(ctx, chatID)
	if err != nil {
		return err
	}
	for i := range chat.Messages {
		if chat.Messages[i].MessageID == messageID {
			if statusUpdate {
				return ErrStatusRegression
			}
			return ErrMessageNotFound
		}
	}
	return ErrMessageNotFound
}
