package accountfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"aave_alarm/internal/domain/entity"

	"go.uber.org/zap"
)

// Load reads tracked accounts from a file. Each non-empty line holds
// "CHAIN ADDRESS [VERSION]" separated by spaces or commas; VERSION defaults
// to 3. Lines starting with '#' are comments. Malformed lines are skipped.
func Load(path string, logger *zap.Logger) ([]entity.TrackedAccount, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open account file %s: %w", path, err)
	}
	defer file.Close()

	accounts, err := Parse(file, logger.With(zap.String("path", path)))
	if err != nil {
		return nil, fmt.Errorf("error scanning account file %s: %w", path, err)
	}
	return accounts, nil
}

// Parse is Load over an arbitrary reader.
func Parse(r io.Reader, logger *zap.Logger) ([]entity.TrackedAccount, error) {
	var accounts []entity.TrackedAccount
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		acc, err := parseLine(line)
		if err != nil {
			logger.Warn("Skipping invalid account line",
				zap.Int("lineNumber", lineNum), zap.String("line", line), zap.Error(err))
			continue
		}
		accounts = append(accounts, acc)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	logger.Info("Accounts loaded", zap.Int("count", len(accounts)))
	return accounts, nil
}

func parseLine(line string) (entity.TrackedAccount, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) < 2 || len(fields) > 3 {
		return entity.TrackedAccount{}, fmt.Errorf("expected 2 or 3 fields, got %d", len(fields))
	}
	version := 3
	if len(fields) == 3 {
		v, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(fields[2]), "v"))
		if err != nil {
			return entity.TrackedAccount{}, fmt.Errorf("bad version %q", fields[2])
		}
		version = v
	}
	return entity.NewTrackedAccount(fields[0], fields[1], version)
}
