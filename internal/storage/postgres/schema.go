package postgres

// schemaStatements bootstrap the webpages table. The search vector is owned by
// the trigger: title, blurb, content and url are weighted A, B, C and D and
// recomputed on every insert or update.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS webpages (
	id serial PRIMARY KEY,
	title TEXT NOT NULL,
	blurb TEXT,
	content TEXT NOT NULL,
	number_js INTEGER NOT NULL,
	url TEXT NOT NULL,
	search_vector tsvector,
	timestamp timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS ix_search_vector ON webpages USING GIN (search_vector)`,
	`CREATE OR REPLACE FUNCTION update_webpage_content() RETURNS trigger AS $$
BEGIN
	new.search_vector := setweight(to_tsvector(coalesce(new.title, '')), 'A') ||
		setweight(to_tsvector(coalesce(new.blurb, '')), 'B') ||
		setweight(to_tsvector(coalesce(new.content, '')), 'C') ||
		setweight(to_tsvector(coalesce(new.url, '')), 'D');
	return new;
END
$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS webpage_search_vector_update ON webpages`,
	`CREATE TRIGGER webpage_search_vector_update
BEFORE INSERT OR UPDATE
ON webpages
FOR EACH ROW EXECUTE PROCEDURE update_webpage_content()`,
}

const (
	selectForStaleness = `SELECT title, url, content FROM webpages WHERE url = $1 LIMIT 1`

	deleteByURL = `DELETE FROM webpages WHERE url = $1`

	insertPage = `INSERT INTO webpages (title, url, blurb, content, number_js) VALUES ($1, $2, $3, $4, $5)`

	searchPages = `SELECT title, url, blurb, number_js, rank, timestamp
FROM (
	SELECT title, url, blurb, number_js,
		ts_rank(search_vector, websearch_to_tsquery($1)) AS rank,
		timestamp
	FROM webpages
) AS ranked
WHERE rank > $2
ORDER BY rank DESC`

	selectPage = `SELECT title, url, blurb, number_js,
	ts_rank(search_vector, websearch_to_tsquery($1)) AS rank,
	timestamp
FROM webpages
WHERE url = $1
LIMIT 1`
)
