package contracts

import "time"

// ForecastSplit is one immutable record per rolling-origin backtest position.
type ForecastSplit struct {
	SplitEnd      time.Time `json:"split_end"`
	ForecastStart time.Time `json:"forecast_start"`
	ForecastEnd   time.Time `json:"forecast_end"`
	TrainLength   int       `json:"train_length"`
	Horizon       int       `json:"horizon"`
	MAE           float64   `json:"mae"`
	SMAPE         float64   `json:"smape"`
	RMSE          float64   `json:"rmse"`
	MAPE          float64   `json:"mape"`
}

// PublishMode 게시 모드
type PublishMode string

const (
	ModeNormal      PublishMode = "normal"
	ModeProvisional PublishMode = "provisional"
)

// PublishDecision is the outcome of the provisional policy: whether the
// current run's output may be published as authoritative.
type PublishDecision struct {
	Mode       PublishMode `json:"mode"`
	CanPublish bool        `json:"can_publish"`
	Reason     string      `json:"reason"`
}
