package pipeline

// Stages lists every pipeline stage in execution order. Each stage writes
// its own <stage>.log under the project logs directory, which is how the
// monitor and the analyzer find them.
var Stages = []string{
	"init",
	"ingest",
	"image_filter",
	"image_analyzer",
	"pre_processing",
	"database_builder",
	"matcher",
	"sparse_reconstruction",
	"sparse_evaluation",
	"dense_reconstruction",
	"dense_evaluation",
	"gen_mesh",
	"mesh_postprocess",
	"texture_mapping",
	"mesh_evaluation",
	"evaluation_aggregator",
	"visualization",
}

// StageIndex returns the position of a stage in the pipeline order,
// or -1 when the name is not a known stage.
func StageIndex(name string) int {
	for i, s := range Stages {
		if s == name {
			return i
		}
	}
	return -1
}

// IsStage reports whether name is a known pipeline stage.
func IsStage(name string) bool {
	return StageIndex(name) >= 0
}

// LogFileName returns the log file name a stage writes to.
func LogFileName(stage string) string {
	return stage + ".log"
}
