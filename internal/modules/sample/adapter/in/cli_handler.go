package in

import (
	"context"
	"fmt"
	"io"
	"time"

	sampledto "calmtrace/internal/modules/sample/dto"
	samplein "calmtrace/internal/modules/sample/port/in"
)

type CLIHandler struct {
	usecase samplein.Usecase
}

func NewCLIHandler(usecase samplein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// IngestJSONL ingests one JSON sample per line. Any invalid line rejects the
// whole file before anything is stored.
func (h CLIHandler) IngestJSONL(ctx context.Context, r io.Reader) (sampledto.IngestOutput, error) {
	samples, err := decodeLines(r)
	if err != nil {
		return sampledto.IngestOutput{}, err
	}
	for i, s := range samples {
		if err := validate(s); err != nil {
			return sampledto.IngestOutput{}, fmt.Errorf("sample %d: %w", i+1, err)
		}
	}
	return h.usecase.Ingest(ctx, sampledto.IngestInput{Samples: samples})
}

func (h CLIHandler) List(ctx context.Context, userID string, from, to time.Time) ([]sampledto.SampleOutput, error) {
	return h.usecase.ListRange(ctx, sampledto.RangeInput{UserID: userID, From: from, To: to})
}
