package app

// WorkerHomes exposes workerHomes for testing purposes only.
var WorkerHomes = workerHomes
