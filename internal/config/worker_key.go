package config

type WorkerKeyStruct struct {
	ExportJobsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ExportJobsQueue: "export_jobs_queue",
}
