// Package swexp implements an experience-augmented automated bug-fixing
// pipeline: it mines finished agent trajectories over real-world issues into
// reusable experience records, and injects generalized lessons from those
// records into the prompts of future runs.
//
// The flow has two strictly ordered phases. Mining runs offline: for each
// (problem, trajectory, verdict) triple, an LLM distills either why the
// attempt worked (perspective, entry point, modification pattern) or why it
// failed (three abstract reflections in each of three categories) into a
// record keyed by the source problem, accumulated in an append-only store.
// Retrieval runs per new problem: an embedding screener shortlists the store
// by cosine similarity, an LLM selector picks exactly one record, and a
// generalizer rewrites its lessons in the target issue's own terms. The
// adapted perspective is generated once per run at the first search-tree node
// and cached for every other node; edit nodes additionally get their pending
// instruction polished fresh each time.
//
// A train/test leakage gate checked from on-disk artifacts alone guards every
// batch: no problem may appear in both the train and test mappings, and no
// test problem may be keyed in the record store. LLM failures degrade a run
// toward zero injected experience; only leakage and missing prerequisite
// files abort a batch.
//
// Package layout:
//
//   - pkg/core: the LLM interface, prompt signatures and global model wiring
//   - pkg/llms: Anthropic and Ollama providers
//   - pkg/datasets: benchmark problems (parquet/JSONL), issue types,
//     trajectories and verdicts
//   - pkg/experience: records, store, miner, screener, selector, generalizer
//   - pkg/runcache: the per-run per-node cache with its single-generation
//     invariant
//   - pkg/pipeline: phase driver, worker pools, leakage gate, injection and
//     progress reporting
//
// The cmd/swexp-cli module provides mine, verify, retrieve and merge
// commands over these packages.
package swexp
