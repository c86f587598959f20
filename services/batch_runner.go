package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"NexoraPanel/models"
	"NexoraPanel/publishers"
	"NexoraPanel/utils"

	"github.com/sirupsen/logrus"
)

// BatchRunner posts a module's canned posts to its page at a fixed cadence.
// All modules share this implementation and differ only in ModuleConfig.
type BatchRunner struct {
	cfg      models.ModuleConfig
	delivery *Delivery
	wait     WaitFunc
	log      *logrus.Entry
}

// NewBatchRunner builds a runner whose posts always use the photo upload:
// a post without an image filename fails instead of posting text.
func NewBatchRunner(cfg models.ModuleConfig, poster publishers.PagePoster, metrics *Metrics) *BatchRunner {
	delivery := NewDelivery(poster, NewImageLibrary(cfg.ImageDir), metrics, cfg.Name)
	delivery.requireImage = true
	return &BatchRunner{
		cfg:      cfg,
		delivery: delivery,
		wait:     SleepContext,
		log:      utils.WithFields(utils.Fields{"module": cfg.Name}),
	}
}

func (b *BatchRunner) Config() models.ModuleConfig {
	return b.cfg
}

func (b *BatchRunner) SetWait(wait WaitFunc) {
	b.wait = wait
}

func (b *BatchRunner) page() models.Page {
	return models.Page{ID: b.cfg.PageID, Name: b.cfg.DisplayName, AccessToken: b.cfg.AccessToken}
}

// LoadPosts reads the module's post file in file order. A missing file is an
// empty list.
func (b *BatchRunner) LoadPosts() ([]models.PostRecord, error) {
	data, err := os.ReadFile(b.cfg.PostsFile)
	if errors.Is(err, os.ErrNotExist) {
		return []models.PostRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read posts %s: %w", b.cfg.PostsFile, err)
	}

	var posts []models.PostRecord
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode posts %s: %w", b.cfg.PostsFile, err)
	}
	if posts == nil {
		posts = []models.PostRecord{}
	}
	return posts, nil
}

// Run shuffles the post list once and then cycles through that order until
// ctx is cancelled, waiting cfg.Interval after every post. It returns nil
// right away when there is nothing to post.
func (b *BatchRunner) Run(ctx context.Context, progress ProgressFunc) error {
	posts, err := b.LoadPosts()
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		b.log.Infof("no posts to schedule")
		return nil
	}

	rand.Shuffle(len(posts), func(i, j int) { posts[i], posts[j] = posts[j], posts[i] })
	b.log.Infof("scheduled %d posts every %s", len(posts), b.cfg.Interval)

	requestCtx := context.WithoutCancel(ctx)
	for {
		for _, post := range posts {
			if err := ctx.Err(); err != nil {
				return err
			}

			result := b.delivery.Deliver(requestCtx, b.page(), post)
			if progress != nil {
				progress(result)
			}

			if err := b.wait(ctx, b.cfg.Interval); err != nil {
				return err
			}
		}
	}
}

// PostOnce delivers one randomly chosen post right away.
func (b *BatchRunner) PostOnce(ctx context.Context) bool {
	posts, err := b.LoadPosts()
	if err != nil {
		b.log.Errorf("post once: %v", err)
		return false
	}
	if len(posts) == 0 {
		b.log.Warnf("no posts available to post once")
		return false
	}

	post := posts[rand.Intn(len(posts))]
	return b.delivery.Deliver(ctx, b.page(), post).Succeeded()
}

// PostSpecific delivers the post at index in file order.
func (b *BatchRunner) PostSpecific(ctx context.Context, index int) bool {
	posts, err := b.LoadPosts()
	if err != nil {
		b.log.Errorf("post %d: %v", index, err)
		return false
	}
	if len(posts) == 0 {
		b.log.Warnf("no posts available to post")
		return false
	}
	if index < 0 || index >= len(posts) {
		b.log.Warnf("invalid post index: %d", index)
		return false
	}

	return b.delivery.Deliver(ctx, b.page(), posts[index]).Succeeded()
}
