// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package classroom implements the application events that may be anchored:
// sending a praise and creating or approving a cooperation. The relational
// effect of each event is committed first and decides the result returned to
// the caller. Anchoring is dispatched afterwards and never fails the request.
package classroom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/blinklabs-io/hometto/database/models"
	"github.com/blinklabs-io/hometto/event"
)

const (
	MaxStampTypeLength   = 64
	MaxPraiseMessageSize = 1024
	MaxTitleLength       = 255
	MaxDescriptionSize   = 2048
	MaxTokenAmount       = 100
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrSelfPraise     = errors.New("a praise cannot be sent to its sender")
	ErrTooFewMembers  = errors.New("a cooperation needs at least one other participant")
	errMissingStore   = errors.New("classroom service requires a store")
)

// Store is the relational side of the classroom events
type Store interface {
	CreatePraise(praise *models.Praise) error
	CreateCooperation(coop *models.Cooperation, participantIDs []uint) error
	ApproveCooperation(
		cooperationID, userID uint,
	) (*models.Cooperation, bool, error)
}

// Dispatcher starts anchoring an event in the background
type Dispatcher interface {
	Dispatch(kind models.AnchorKind, eventID uint) bool
}

type Config struct {
	Logger   *slog.Logger
	Store    Store
	Anchorer Dispatcher
	EventBus *event.EventBus
}

type Service struct {
	config Config
	logger *slog.Logger
}

func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errMissingStore
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		config: cfg,
		logger: cfg.Logger.With("component", "classroom"),
	}, nil
}

type SendPraiseRequest struct {
	FromUserID  uint
	ToUserID    uint
	StampType   string
	Message     string
	TokenAmount int64
}

func (r *SendPraiseRequest) validate() error {
	r.StampType = strings.TrimSpace(r.StampType)
	switch {
	case r.FromUserID == 0 || r.ToUserID == 0:
		return fmt.Errorf("%w: sender and recipient are required", ErrInvalidRequest)
	case r.FromUserID == r.ToUserID:
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrSelfPraise)
	case r.StampType == "":
		return fmt.Errorf("%w: stamp type is required", ErrInvalidRequest)
	case len(r.StampType) > MaxStampTypeLength:
		return fmt.Errorf("%w: stamp type is too long", ErrInvalidRequest)
	case len(r.Message) > MaxPraiseMessageSize:
		return fmt.Errorf("%w: message is too long", ErrInvalidRequest)
	case !utf8.ValidString(r.Message):
		return fmt.Errorf("%w: message is not valid UTF-8", ErrInvalidRequest)
	}
	if r.TokenAmount == 0 {
		r.TokenAmount = 1
	}
	if r.TokenAmount < 0 || r.TokenAmount > MaxTokenAmount {
		return fmt.Errorf(
			"%w: token amount must be between 1 and %d",
			ErrInvalidRequest,
			MaxTokenAmount,
		)
	}
	return nil
}

// SendPraise records a praise and credits its recipient, then dispatches the
// praise for anchoring. The returned error only reflects the relational write.
func (s *Service) SendPraise(
	ctx context.Context,
	req SendPraiseRequest,
) (*models.Praise, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	praise := &models.Praise{
		FromUserID:  req.FromUserID,
		ToUserID:    req.ToUserID,
		StampType:   req.StampType,
		Message:     req.Message,
		TokenAmount: req.TokenAmount,
	}
	if err := s.config.Store.CreatePraise(praise); err != nil {
		return nil, fmt.Errorf("create praise: %w", err)
	}
	s.logger.Info(
		"praise sent",
		"praise_id", praise.ID,
		"from", praise.FromUserID,
		"to", praise.ToUserID,
		"stamp", praise.StampType,
		"amount", praise.TokenAmount,
	)
	s.publish(PraiseSentEventType, PraiseSentEvent{Praise: *praise})
	s.dispatch(models.AnchorKindPraise, praise.ID)
	return praise, nil
}

type CreateCooperationRequest struct {
	InitiatorID    uint
	Title          string
	Description    string
	ParticipantIDs []uint
}

func (r *CreateCooperationRequest) validate() error {
	r.Title = strings.TrimSpace(r.Title)
	switch {
	case r.InitiatorID == 0:
		return fmt.Errorf("%w: initiator is required", ErrInvalidRequest)
	case r.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidRequest)
	case len(r.Title) > MaxTitleLength:
		return fmt.Errorf("%w: title is too long", ErrInvalidRequest)
	case len(r.Description) > MaxDescriptionSize:
		return fmt.Errorf("%w: description is too long", ErrInvalidRequest)
	}
	for _, id := range r.ParticipantIDs {
		if id != 0 && id != r.InitiatorID {
			return nil
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrTooFewMembers)
}

// CreateCooperation records a cooperation. The initiator joins first and
// approves it on creation.
func (s *Service) CreateCooperation(
	ctx context.Context,
	req CreateCooperationRequest,
) (*models.Cooperation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	coop := &models.Cooperation{
		InitiatorID: req.InitiatorID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.config.Store.CreateCooperation(coop, req.ParticipantIDs); err != nil {
		return nil, fmt.Errorf("create cooperation: %w", err)
	}
	s.logger.Info(
		"cooperation created",
		"cooperation_id", coop.ID,
		"initiator", coop.InitiatorID,
		"required_approvals", coop.RequiredApprovals,
	)
	return coop, nil
}

// ApproveCooperation records the approval of a participant. The approval that
// completes the cooperation credits every participant and dispatches exactly
// one anchoring run for the cooperation.
func (s *Service) ApproveCooperation(
	ctx context.Context,
	cooperationID, userID uint,
) (*models.Cooperation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	coop, completed, err := s.config.Store.ApproveCooperation(cooperationID, userID)
	if err != nil {
		return nil, fmt.Errorf("approve cooperation: %w", err)
	}
	s.logger.Debug(
		"cooperation approved",
		"cooperation_id", cooperationID,
		"user_id", userID,
		"approvals", coop.CurrentApprovals,
		"required", coop.RequiredApprovals,
	)
	if completed {
		s.logger.Info(
			"cooperation completed",
			"cooperation_id", coop.ID,
			"participants", len(coop.Participants),
		)
		s.publish(
			CooperationCompletedEventType,
			CooperationCompletedEvent{Cooperation: *coop},
		)
		s.dispatch(models.AnchorKindCooperation, coop.ID)
	}
	return coop, nil
}

func (s *Service) dispatch(kind models.AnchorKind, id uint) {
	if s.config.Anchorer == nil {
		return
	}
	if !s.config.Anchorer.Dispatch(kind, id) {
		s.logger.Debug(
			"anchoring not dispatched",
			"kind", kind,
			"event_id", id,
		)
	}
}

func (s *Service) publish(eventType event.EventType, data any) {
	if s.config.EventBus == nil {
		return
	}
	s.config.EventBus.Publish(event.NewEvent(eventType, data))
}
