package worker

import (
	"masterdata-web/internal/config"
	"masterdata-web/internal/repository"
	"masterdata-web/internal/service"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	masterRepo := repository.NewMasterRepository(db)
	kv := service.NewKVStore(redis)

	refs := service.NewReferenceService(masterRepo, kv, cfg.ReferenceCacheTTL)
	importer := service.NewImportService(masterRepo, refs)
	// the worker only records results; submitting is the web process's job
	jobs := service.NewImportJobService(nil, kv, cfg.ImportResultTTL)

	mux.HandleFunc(service.TaskImport, NewImportTaskHandler(importer, jobs).Handle)
}
