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

package api

import (
	"time"

	"github.com/blinklabs-io/hometto/database/models"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	IsHealthy bool `json:"isHealthy"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type CreateUserRequest struct {
	DisplayName string `json:"displayName"`
	Role        string `json:"role,omitempty"`
}

type UserResponse struct {
	CreatedAt    time.Time `json:"createdAt"`
	DisplayName  string    `json:"displayName"`
	Role         string    `json:"role"`
	ID           uint      `json:"id"`
	TokenBalance int64     `json:"tokenBalance"`
}

// LedgerAccountResponse never carries key material beyond the public key
type LedgerAccountResponse struct {
	CreatedAt time.Time `json:"createdAt"`
	Network   string    `json:"network"`
	Address   string    `json:"address"`
	PublicKey string    `json:"publicKey"`
	UserID    uint      `json:"userId"`
}

type SendPraiseRequest struct {
	StampType   string `json:"stampType"`
	Message     string `json:"message,omitempty"`
	FromUserID  uint   `json:"fromUserId"`
	ToUserID    uint   `json:"toUserId"`
	TokenAmount int64  `json:"tokenAmount,omitempty"`
}

type PraiseResponse struct {
	CreatedAt    time.Time `json:"createdAt"`
	LedgerTxHash *string   `json:"ledgerTxHash"`
	StampType    string    `json:"stampType"`
	Message      string    `json:"message"`
	ID           uint      `json:"id"`
	FromUserID   uint      `json:"fromUserId"`
	ToUserID     uint      `json:"toUserId"`
	TokenAmount  int64     `json:"tokenAmount"`
}

type CreateCooperationRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	ParticipantIDs []uint `json:"participantIds"`
	InitiatorID    uint   `json:"initiatorId"`
}

type ApproveCooperationRequest struct {
	UserID uint `json:"userId"`
}

type ParticipantResponse struct {
	ApprovedAt *time.Time `json:"approvedAt"`
	UserID     uint       `json:"userId"`
	JoinOrder  int        `json:"joinOrder"`
	Approved   bool       `json:"approved"`
}

type CooperationResponse struct {
	CreatedAt         time.Time             `json:"createdAt"`
	CompletedAt       *time.Time            `json:"completedAt"`
	LedgerTxHash      *string               `json:"ledgerTxHash"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Participants      []ParticipantResponse `json:"participants"`
	ID                uint                  `json:"id"`
	InitiatorID       uint                  `json:"initiatorId"`
	RequiredApprovals int                   `json:"requiredApprovals"`
	CurrentApprovals  int                   `json:"currentApprovals"`
}

// StatsResponse is returned by GET /api/v1/stats
type StatsResponse struct {
	TotalUsers            int64 `json:"totalUsers"`
	TotalPraises          int64 `json:"totalPraises"`
	TotalTokens           int64 `json:"totalTokens"`
	AnchoredPraises       int64 `json:"anchoredPraises"`
	TotalCooperations     int64 `json:"totalCooperations"`
	CompletedCooperations int64 `json:"completedCooperations"`
	AnchoredCooperations  int64 `json:"anchoredCooperations"`
}

type LedgerStatusResponse struct {
	Network   string `json:"network"`
	Error     string `json:"error,omitempty"`
	Height    uint64 `json:"height"`
	Connected bool   `json:"connected"`
}

type BalanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type TransactionResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Message   *string   `json:"message"`
	Hash      string    `json:"hash"`
	Signer    string    `json:"signer"`
	Recipient string    `json:"recipient,omitempty"`
	Height    uint64    `json:"height"`
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		DisplayName:  u.DisplayName,
		Role:         u.Role,
		TokenBalance: u.TokenBalance,
		CreatedAt:    u.CreatedAt,
	}
}

func praiseResponse(p *models.Praise) PraiseResponse {
	return PraiseResponse{
		ID:           p.ID,
		FromUserID:   p.FromUserID,
		ToUserID:     p.ToUserID,
		StampType:    p.StampType,
		Message:      p.Message,
		TokenAmount:  p.TokenAmount,
		CreatedAt:    p.CreatedAt,
		LedgerTxHash: p.LedgerTxHash,
	}
}

func cooperationResponse(c *models.Cooperation) CooperationResponse {
	ret := CooperationResponse{
		ID:                c.ID,
		Title:             c.Title,
		Description:       c.Description,
		InitiatorID:       c.InitiatorID,
		RequiredApprovals: c.RequiredApprovals,
		CurrentApprovals:  c.CurrentApprovals,
		CreatedAt:         c.CreatedAt,
		CompletedAt:       c.CompletedAt,
		LedgerTxHash:      c.LedgerTxHash,
		Participants:      make([]ParticipantResponse, 0, len(c.Participants)),
	}
	for _, p := range c.Participants {
		ret.Participants = append(ret.Participants, ParticipantResponse{
			UserID:     p.UserID,
			JoinOrder:  p.JoinOrder,
			Approved:   p.Approved,
			ApprovedAt: p.ApprovedAt,
		})
	}
	return ret
}
