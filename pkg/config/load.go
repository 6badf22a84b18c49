// Package config загружает конфигурацию сервисов из .env файла и переменных окружения.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"authkeeper/pkg/logger"
)

// EnvFileVar задает путь к необязательному .env файлу.
const EnvFileVar = "CONFIG_ENV_FILE"

const (
	msgLoadingConfiguration    = "loading configuration"
	msgConfigurationLoaded     = "configuration loaded successfully"
	msgFailedLoadConfiguration = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// Load заполняет T из файла envPath, если он существует, иначе из окружения.
func Load[T any](ctx context.Context, serviceName, envPath string) (*T, error) {
	log := logger.Log(ctx).With(zap.String(attrService, serviceName))

	var cfg T

	readFile := false
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			readFile = true
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Error(ctx, msgFailedLoadConfiguration, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", msgFailedLoadConfiguration, err)
		}
	}

	var err error
	if readFile {
		log.Info(ctx, msgLoadingConfiguration, zap.String(attrPath, envPath))
		err = cleanenv.ReadConfig(envPath, &cfg)
	} else {
		log.Info(ctx, msgLoadingConfiguration)
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		log.Error(ctx, msgFailedLoadConfiguration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", msgFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded)

	return &cfg, nil
}
