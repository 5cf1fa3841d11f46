// Package services implements the driving port interfaces.
// Services contain the synchronisation, query and upload logic and
// orchestrate calls to driven ports (adapters).
//
// Each service that holds in-flight work carries a generation counter.
// A logout bumps it, and results that complete under an older generation
// are dropped instead of being written into the reset stores.
package services
