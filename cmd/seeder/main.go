// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Seeder loads a small multimodal sample corpus into a database so the
// ask command has something to answer from.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/askit"
	"github.com/poiesic/askit/core"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	dbPath := "./askit_db"
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}

	engine, err := askit.NewEngine(dbPath)
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	chunks := []*core.Chunk{
		{FileId: "docs/q3-report.pdf", FileName: "q3-report.pdf", ChunkIndex: 0, Modality: core.ModalityText,
			Text: "Q3 revenue grew 12% quarter over quarter, driven by the Atlas product line. John Smith presented the figures to the board."},
		{FileId: "docs/q3-report.pdf", FileName: "q3-report.pdf", ChunkIndex: 1, Modality: core.ModalityText,
			Text: "Hiring at the Berlin office will continue through Q4, with a focus on infrastructure engineers for Atlas."},
		{FileId: "media/standup-0612.mp4", FileName: "standup-0612.mp4", ChunkIndex: 0, Modality: core.ModalityVideo,
			Text: "John Smith: the Atlas migration finished ahead of schedule, we can start the rollout next sprint."},
		{FileId: "media/allhands-0620.mp3", FileName: "allhands-0620.mp3", ChunkIndex: 0, Modality: core.ModalityAudio,
			Text: "The Berlin office move is confirmed for October. Acme Logistics handles the relocation."},
		{FileId: "img/atlas-arch.png", FileName: "atlas-arch.png", ChunkIndex: 0, Modality: core.ModalityImage,
			Text: "Architecture diagram of the Atlas platform: ingestion workers feeding a BadgerDB store behind the query gateway."},
	}

	added, err := pipeline.IngestChunks(ctx, chunks...)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Ingested %d chunks\n", len(added))

	johnId := core.IDFromContent(core.EntityKey("John Smith", core.EntityTypePerson))
	atlasId := core.IDFromContent(core.EntityKey("Atlas", core.EntityTypeProduct))
	berlinId := core.IDFromContent(core.EntityKey("Berlin", core.EntityTypeLocation))
	acmeId := core.IDFromContent(core.EntityKey("Acme Logistics", core.EntityTypeOrganization))

	entities := []*core.Entity{
		{Name: "John Smith", Type: core.EntityTypePerson, Confidence: 0.95,
			Description:  "Presented Q3 figures, leads the Atlas migration",
			SourceFileId: "docs/q3-report.pdf", SourceModality: core.ModalityText},
		{Name: "John Smith", Type: core.EntityTypePerson, Confidence: 0.9,
			SourceFileId: "media/standup-0612.mp4", SourceModality: core.ModalityVideo},
		{Name: "Atlas", Type: core.EntityTypeProduct, Confidence: 0.9,
			Description:  "Main product line",
			SourceFileId: "docs/q3-report.pdf", SourceModality: core.ModalityText},
		{Name: "Berlin", Type: core.EntityTypeLocation, Confidence: 0.9,
			SourceFileId: "docs/q3-report.pdf", SourceModality: core.ModalityText},
		{Name: "Acme Logistics", Type: core.EntityTypeOrganization, Confidence: 0.85,
			Description:  "Relocation vendor for the Berlin office move",
			SourceFileId: "media/allhands-0620.mp3", SourceModality: core.ModalityAudio},
	}

	rels := []*core.Relationship{
		{SourceId: johnId, TargetId: atlasId, Type: core.RelationRelatedTo, Confidence: 0.9},
		{SourceId: atlasId, TargetId: berlinId, Type: core.RelationLocatedIn, Confidence: 0.7},
		{SourceId: acmeId, TargetId: berlinId, Type: core.RelationLocatedIn, Confidence: 0.8},
	}

	if err := pipeline.IngestGraph(ctx, entities, rels); err != nil {
		panic(err)
	}
	fmt.Printf("Ingested %d entities, %d relationships\n", len(entities), len(rels))
}
