// Package sqlite writes and reads offline snapshots of the tree catalog as
// SQLite databases and JSONL files.
package sqlite

// Schema DDL for the snapshot tables.
const (
	createStrains = `CREATE TABLE strains (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT
);`

	createBatches = `CREATE TABLE batches (
    id INTEGER PRIMARY KEY,
    batch_code TEXT NOT NULL,
    description TEXT,
    started_date TEXT
);`

	createImages = `CREATE TABLE images (
    id INTEGER PRIMARY KEY,
    image TEXT NOT NULL,
    thumbnail TEXT,
    uploaded_at TEXT
);`

	createTrees = `CREATE TABLE trees (
    id INTEGER PRIMARY KEY,
    nickname TEXT,
    strain_id INTEGER,
    variety TEXT,
    generation TEXT,
    batch_id INTEGER,
    location TEXT,
    status TEXT,
    created_at TEXT,
    updated_at TEXT,
    germination_date TEXT,
    plant_date TEXT,
    growth_stage TEXT,
    harvest_date TEXT,
    sex TEXT,
    genotype TEXT,
    phenotype TEXT,
    parent_male_id INTEGER,
    parent_female_id INTEGER,
    clone_source_id INTEGER,
    pollination_date TEXT,
    pollinated_by_id INTEGER,
    yield_amount REAL,
    flower_quality TEXT,
    seed_count INTEGER,
    seed_harvest_date TEXT,
    disease_notes TEXT,
    document TEXT,
    notes TEXT,
    FOREIGN KEY (strain_id) REFERENCES strains(id),
    FOREIGN KEY (batch_id) REFERENCES batches(id)
);`

	createTreeImages = `CREATE TABLE tree_images (
    tree_id INTEGER NOT NULL,
    image_id INTEGER NOT NULL,
    PRIMARY KEY (tree_id, image_id),
    FOREIGN KEY (tree_id) REFERENCES trees(id) ON DELETE CASCADE,
    FOREIGN KEY (image_id) REFERENCES images(id)
);`
)

// Index DDL for the inspect queries.
const (
	idxTreesStrain     = `CREATE INDEX idx_trees_strain ON trees(strain_id);`
	idxTreesBatch      = `CREATE INDEX idx_trees_batch ON trees(batch_id);`
	idxTreesStatus     = `CREATE INDEX idx_trees_status ON trees(status);`
	idxTreeImagesImage = `CREATE INDEX idx_tree_images_image ON tree_images(image_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createStrains,
	createBatches,
	createImages,
	createTrees,
	createTreeImages,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTreesStrain,
	idxTreesBatch,
	idxTreesStatus,
	idxTreeImagesImage,
}
