package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/swordfinder/internal/domain/model"
	"github.com/user/swordfinder/internal/playbyplay"
	"github.com/user/swordfinder/internal/video"
	"github.com/user/swordfinder/pkg/logger"
)

// VideoOutcome records what happened to one swing's clip.
type VideoOutcome struct {
	Identifier string                `json:"identifier"`
	State      model.VideoAssetState `json:"state"`
	LocalPath  string                `json:"local_path,omitempty"`
	Note       string                `json:"note,omitempty"`
}

// VideoReport summarizes a videos-process run for one date.
type VideoReport struct {
	Date       string         `json:"date"`
	Swings     int            `json:"swings"`
	Downloaded int            `json:"downloaded"`
	Failed     int            `json:"failed"`
	Outcomes   []VideoOutcome `json:"outcomes"`
}

// ProcessVideos resolves and downloads the clip for every ranked swing on a
// date, computing the ranking first when needed. Per-swing failures land in
// the report, never abort the batch; an already-downloaded clip is reported
// without new network work.
func (s *Service) ProcessVideos(ctx context.Context, date string) (*VideoReport, error) {
	if s.resolver == nil || s.downloader == nil {
		return nil, ErrVideoDisabled
	}

	set, err := s.SwordsForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	report := &VideoReport{Date: date, Swings: len(set.Swings)}
	for i := range set.Swings {
		outcome := s.processSwing(ctx, &set.Swings[i])
		if outcome.State == model.VideoDownloaded {
			report.Downloaded++
		} else {
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report, nil
}

func (s *Service) processSwing(ctx context.Context, sw *model.ScoredSwing) VideoOutcome {
	identifier, err := s.identifierFor(ctx, sw.Pitch)
	if err != nil {
		return VideoOutcome{State: model.VideoFailed, Note: err.Error()}
	}

	// A clip downloaded on an earlier run is final.
	if asset, err := s.store.VideoAsset(ctx, identifier); err == nil && asset.State == model.VideoDownloaded {
		return VideoOutcome{Identifier: identifier, State: asset.State, LocalPath: asset.LocalPath}
	}

	pageURL, mediaURL, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		asset := &model.VideoAsset{Identifier: identifier, PageURL: pageURL, State: model.VideoFailed}
		s.saveAsset(ctx, asset)
		return VideoOutcome{Identifier: identifier, State: model.VideoFailed, Note: "no media url"}
	}
	s.saveAsset(ctx, &model.VideoAsset{
		Identifier: identifier,
		PageURL:    pageURL,
		MediaURL:   mediaURL,
		State:      model.VideoResolved,
	})

	asset, err := s.downloader.Download(ctx, identifier, mediaURL)
	if err != nil {
		return VideoOutcome{Identifier: identifier, State: model.VideoFailed, Note: err.Error()}
	}
	asset.PageURL = pageURL
	s.saveAsset(ctx, asset)

	out := VideoOutcome{Identifier: identifier, State: asset.State, LocalPath: asset.LocalPath}
	if asset.State == model.VideoFailed {
		out.Note = "download retries exhausted"
	}
	return out
}

// identifierFor returns the swing's video identifier, recovering it from the
// play-by-play feed and backfilling the store when the ingest left it empty.
func (s *Service) identifierFor(ctx context.Context, p *model.PitchEvent) (string, error) {
	if p.PlayID != "" {
		return p.PlayID, nil
	}
	if s.feed == nil {
		return "", video.ErrNoPlayID
	}

	playID, err := s.feed.LookupPlayID(ctx, p.GamePK, p.Inning, p.PitchNumber)
	if err != nil {
		if errors.Is(err, playbyplay.ErrNotFound) {
			return "", video.ErrNoPlayID
		}
		return "", fmt.Errorf("lookup play id: %w", err)
	}

	if err := s.store.SetPlayID(ctx, p.Key(), playID); err != nil {
		s.logger.Warn(ctx, "play id backfill failed",
			logger.String("play_id", playID),
			logger.Error(err),
		)
	}
	p.PlayID = playID
	return playID, nil
}

func (s *Service) saveAsset(ctx context.Context, asset *model.VideoAsset) {
	if err := s.store.UpsertVideoAsset(ctx, asset); err != nil {
		s.logger.Warn(ctx, "video asset save failed",
			logger.String("identifier", asset.Identifier),
			logger.Error(err),
		)
	}
}
