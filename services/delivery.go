package services

import (
	"context"
	"time"

	"NexoraPanel/models"
	"NexoraPanel/publishers"
	"NexoraPanel/utils"
)

// Delivery sends one post to one page. Every outcome, including a missing
// token or image, comes back as a DeliveryResult; nothing is retried.
type Delivery struct {
	poster  publishers.PagePoster
	images  *ImageLibrary
	metrics *Metrics
	module  string
	now     func() time.Time

	// requireImage makes a post without an image filename fail with
	// ErrImageNotFound instead of going out as a text post.
	requireImage bool
}

func NewDelivery(poster publishers.PagePoster, images *ImageLibrary, metrics *Metrics, module string) *Delivery {
	return &Delivery{
		poster:  poster,
		images:  images,
		metrics: metrics,
		module:  module,
		now:     time.Now,
	}
}

func (d *Delivery) Deliver(ctx context.Context, page models.Page, post models.PostRecord) models.DeliveryResult {
	result := d.deliver(ctx, page, post)
	d.metrics.ObserveDelivery(d.module, result.Status)

	log := utils.WithFields(utils.Fields{"module": d.module, "page_id": page.ID, "status": result.Status})
	if result.Succeeded() {
		log.Infof("posted %s", result.PostID)
	} else {
		log.Warnf("delivery failed: %s", result.Error)
	}
	return result
}

func (d *Delivery) deliver(ctx context.Context, page models.Page, post models.PostRecord) models.DeliveryResult {
	result := models.DeliveryResult{
		PageID:    page.ID,
		PageName:  page.Name,
		Timestamp: d.now(),
	}

	if page.AccessToken == "" {
		result.Status = models.DeliveryMissingToken
		result.Error = publishers.ErrMissingToken.Error()
		return result
	}

	var (
		postID string
		err    error
	)
	switch {
	case post.ImageFilename == "" && !d.requireImage:
		postID, err = d.poster.PostText(ctx, page.ID, page.AccessToken, post.Message, "")
	case IsRemoteImage(post.ImageFilename):
		postID, err = d.poster.PostText(ctx, page.ID, page.AccessToken, post.Message, post.ImageFilename)
	default:
		path, mimeType, resolveErr := d.images.Resolve(post.ImageFilename)
		if resolveErr != nil {
			err = resolveErr
			break
		}
		postID, err = d.poster.PostPhoto(ctx, publishers.Photo{
			PageID:    page.ID,
			PageToken: page.AccessToken,
			Message:   post.Message,
			Path:      path,
			MimeType:  mimeType,
		})
	}

	if err != nil {
		result.Status = models.DeliveryError
		result.Error = err.Error()
		return result
	}

	result.Status = models.DeliverySuccess
	result.PostID = postID
	return result
}
