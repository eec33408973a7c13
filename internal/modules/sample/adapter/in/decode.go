package in

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	sampledto "calmtrace/internal/modules/sample/dto"
	apperrors "calmtrace/internal/platform/errors"
)

const maxLineBytes = 1 << 20

// decodeBatch accepts a JSON array of samples or a single sample object.
func decodeBatch(data []byte) ([]sampledto.SampleInput, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", apperrors.ErrInvalidInput)
	}
	if data[0] == '[' {
		var samples []sampledto.SampleInput
		if err := json.Unmarshal(data, &samples); err != nil {
			return nil, fmt.Errorf("%w: decode samples: %v", apperrors.ErrInvalidInput, err)
		}
		return samples, nil
	}
	var s sampledto.SampleInput
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decode sample: %v", apperrors.ErrInvalidInput, err)
	}
	return []sampledto.SampleInput{s}, nil
}

// decodeLines reads one sample per line, skipping blank lines.
func decodeLines(r io.Reader) ([]sampledto.SampleInput, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	samples := make([]sampledto.SampleInput, 0)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var s sampledto.SampleInput
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrInvalidInput, line, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	return samples, nil
}

// validate holds the boundary checks; the core trusts what passes them.
func validate(s sampledto.SampleInput) error {
	switch {
	case strings.TrimSpace(s.UserID) == "":
		return fmt.Errorf("%w: user_id is required", apperrors.ErrInvalidInput)
	case s.MeasuredAt.IsZero():
		return fmt.Errorf("%w: measured_at is required", apperrors.ErrInvalidInput)
	case s.StressLevel < 0 || s.StressLevel > 5:
		return fmt.Errorf("%w: stress_level must be within 0-5", apperrors.ErrInvalidInput)
	case s.StressIndex != nil && (*s.StressIndex < 0 || *s.StressIndex > 100):
		return fmt.Errorf("%w: stress_index must be within 0-100", apperrors.ErrInvalidInput)
	}
	return nil
}
