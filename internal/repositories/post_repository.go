package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// UpdatePost persists post only if the stored version still equals
	// post.Version, returning ErrConflict otherwise. On success post.Version
	// is advanced to the stored value.
	UpdatePost(ctx context.Context, post *models.Post) error
	// GetPostsByUserID returns one page of a user's posts, newest first.
	GetPostsByUserID(ctx context.Context, userID, cursor string, limit int) (*models.Page[models.Post], error)
	// GetPostsByUserIDs returns one page of posts owned by any of userIDs, newest first.
	GetPostsByUserIDs(ctx context.Context, userIDs []string, cursor string, limit int) (*models.Page[models.Post], error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the compound index backing both feed queries
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create posts index: %w", err)
	}
	return nil
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPost retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// UpdatePost replaces the mutable fields of a post guarded by its version
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	update := bson.M{
		"$set": bson.M{
			"description": post.Description,
			"image":       post.Image,
			"likes":       post.Likes,
			"comments":    post.Comments,
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID, "version": post.Version}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": post.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	post.Version++
	return nil
}

// GetPostsByUserID retrieves posts by a specific user from MongoDB
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID, cursor string, limit int) (*models.Page[models.Post], error) {
	return r.findPage(ctx, bson.M{"user_id": userID}, cursor, limit)
}

// GetPostsByUserIDs retrieves posts owned by any of the given users from MongoDB
func (r *MongoPostRepository) GetPostsByUserIDs(ctx context.Context, userIDs []string, cursor string, limit int) (*models.Page[models.Post], error) {
	return r.findPage(ctx, bson.M{"user_id": bson.M{"$in": userIDs}}, cursor, limit)
}

func (r *MongoPostRepository) findPage(ctx context.Context, filter bson.M, cursor string, limit int) (*models.Page[models.Post], error) {
	if c, ok := pagination.DecodeTimeKey(cursor); ok {
		filter["$or"] = bson.A{
			bson.M{"date": bson.M{"$lt": c.Date}},
			bson.M{"date": c.Date, "_id": bson.M{"$lt": c.ID}},
		}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit + 1))
	cur, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return NewPage(posts, limit, postCursor)
}

func postCursor(p models.Post) pagination.Cursor {
	return pagination.Cursor{Date: p.Date, ID: p.ID}
}
