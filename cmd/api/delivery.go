package main

import (
	"context"
	"fmt"

	"github.com/anBertoli/snap-share/pkg/datauri"
	"github.com/anBertoli/snap-share/pkg/mailer"
	"github.com/anBertoli/snap-share/services/downloads"
)

// mailDelivery delivers approved pictures by email, with the picture attached.
type mailDelivery struct {
	mailer mailSender
}

func (md mailDelivery) Deliver(ctx context.Context, d downloads.Delivery) error {
	image, err := datauri.Parse(d.Picture.Image)
	if err != nil {
		return fmt.Errorf("decoding picture %d: %w", d.Picture.ID, err)
	}

	mailData := map[string]interface{}{
		"RecipientName":      d.Recipient.FirstName,
		"OwnerName":          d.Owner.FirstName + " " + d.Owner.LastName,
		"GalleryTitle":       d.Gallery.Title,
		"PictureTitle":       d.Picture.Title,
		"PictureDescription": d.Picture.Description,
	}

	return md.mailer.Send(ctx, d.Recipient.Email, "picture_delivery.gohtml", mailData, mailer.Attachment{
		Filename:    image.Filename(d.Picture.Filename),
		ContentType: image.Detected.String(),
		Data:        image.Data,
	})
}
