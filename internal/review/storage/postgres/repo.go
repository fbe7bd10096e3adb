package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Source reads the canonical collection from review_comments and
// review_replies. It never writes.
type Source struct {
	db      *sql.DB
	product string
}

func New(db *sql.DB) *Source {
	return &Source{db: db}
}

// Open connects through the pgx database/sql driver.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// ForProduct limits loading to one product handle.
func (s *Source) ForProduct(handle string) *Source {
	return &Source{db: s.db, product: handle}
}

func (s *Source) commentsQuery() sq.SelectBuilder {
	q := psql.
		Select("id", "title", "body", "reviewer_name", "product_handle", "created_at",
			"rating", "helpful_count", "verified_purchase", "featured", "likes",
			"images", "follow_up").
		From("review_comments").
		OrderBy("id ASC")
	if s.product != "" {
		q = q.Where(sq.Eq{"product_handle": s.product})
	}
	return q
}

func (s *Source) repliesQuery(ids []int64) sq.SelectBuilder {
	return psql.
		Select("comment_id", "id", "author", "content", "created_at", "likes", "parent_id").
		From("review_replies").
		Where(sq.Eq{"comment_id": ids}).
		OrderBy("comment_id ASC", "seq ASC")
}

func (s *Source) Load(ctx context.Context) ([]model.Comment, error) {
	query, args, err := s.commentsQuery().ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, 64)
	index := make(map[int64]int, 64)
	for rows.Next() {
		var (
			c                model.Comment
			images, followUp []byte
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Body, &c.ReviewerName, &c.ProductHandle, &c.Timestamp,
			&c.Rating, &c.HelpfulCount, &c.VerifiedPurchase, &c.Featured, &c.Likes,
			&images, &followUp); err != nil {
			return nil, err
		}
		if len(images) > 0 {
			if err := json.Unmarshal(images, &c.Images); err != nil {
				log.Warn().Err(err).Int64("comment_id", c.ID).Msg("ignoring unreadable images column")
			}
		}
		if len(followUp) > 0 && string(followUp) != "null" {
			var fu model.FollowUp
			if err := json.Unmarshal(followUp, &fu); err != nil {
				log.Warn().Err(err).Int64("comment_id", c.ID).Msg("ignoring unreadable follow_up column")
			} else {
				c.FollowUp = &fu
				c.HasFollowUp = true
			}
		}
		index[c.ID] = len(comments)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(comments) == 0 {
		return comments, nil
	}
	if err := s.loadReplies(ctx, comments, index); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Source) loadReplies(ctx context.Context, comments []model.Comment, index map[int64]int) error {
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}

	query, args, err := s.repliesQuery(ids).ToSql()
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load replies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			commentID int64
			parent    sql.NullInt64
			r         model.Reply
		)
		if err := rows.Scan(&commentID, &r.ID, &r.Author, &r.Content, &r.Timestamp, &r.Likes, &parent); err != nil {
			return err
		}
		if parent.Valid {
			r.ParentID = parent.Int64
		}
		i, ok := index[commentID]
		if !ok {
			continue
		}
		comments[i].Replies = append(comments[i].Replies, r)
	}
	return rows.Err()
}
