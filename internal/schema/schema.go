// Package schema declares the five star-schema tables.
package schema

import "sparkify/internal/storage"

// Table names, in creation order.
const (
	Users     = "users"
	Artists   = "artists"
	Songs     = "songs"
	Time      = "time"
	Songplays = "songplays"
)

func nullable() *bool {
	v := true
	return &v
}

func col(name, typ string) storage.ColumnSpec { return storage.ColumnSpec{Name: name, Type: typ} }

func pk(cols ...string) storage.ConstraintSpec {
	return storage.ConstraintSpec{Kind: storage.ConstraintPrimaryKey, Columns: cols}
}

func nonNegative(table, column string) storage.ConstraintSpec {
	return storage.ConstraintSpec{
		Name:    table + "_" + column + "_nonneg",
		Kind:    storage.ConstraintCheckNonNegative,
		Columns: []string{column},
	}
}

// StarSchema returns the table specs in dependency order: every table comes
// after the tables it references.
func StarSchema() []storage.TableSpec {
	timeCols := []storage.ColumnSpec{col("ts", "bigint"), col("start_time", "time")}
	timeChecks := []storage.ConstraintSpec{pk("ts")}
	for _, c := range []string{"hour", "day", "week", "month", "year", "weekday"} {
		timeCols = append(timeCols, storage.ColumnSpec{Name: c, Type: "smallint", Nullable: nullable()})
		timeChecks = append(timeChecks, nonNegative(Time, c))
	}

	return []storage.TableSpec{
		{
			Name: Users,
			Columns: []storage.ColumnSpec{
				col("user_id", "smallint"),
				col("first_name", "varchar"),
				col("last_name", "varchar"),
				col("gender", "varchar(1)"),
				col("level", "varchar"),
			},
			Constraints: []storage.ConstraintSpec{pk("user_id", "level")},
		},
		{
			Name: Artists,
			Columns: []storage.ColumnSpec{
				col("artist_id", "varchar"),
				col("artist_name", "varchar"),
				{Name: "artist_location", Type: "varchar", Nullable: nullable()},
				{Name: "artist_latitude", Type: "numeric", Nullable: nullable()},
				{Name: "artist_longitude", Type: "numeric", Nullable: nullable()},
			},
			Constraints: []storage.ConstraintSpec{pk("artist_id")},
		},
		{
			Name: Songs,
			Columns: []storage.ColumnSpec{
				col("song_id", "varchar"),
				col("title", "varchar"),
				{Name: "artist_id", Type: "varchar", References: Artists + "(artist_id)", Nullable: nullable()},
				col("year", "smallint"),
				col("duration", "numeric"),
			},
			Constraints: []storage.ConstraintSpec{
				pk("song_id"),
				nonNegative(Songs, "year"),
				nonNegative(Songs, "duration"),
			},
		},
		{
			Name:        Time,
			Columns:     timeCols,
			Constraints: timeChecks,
		},
		{
			Name: Songplays,
			Columns: []storage.ColumnSpec{
				col("songplay_id", "varchar"),
				{Name: "ts", Type: "bigint", References: Time + "(ts)", Nullable: nullable()},
				col("start_time", "time"),
				{Name: "user_id", Type: "smallint", Nullable: nullable()},
				{Name: "level", Type: "varchar", Nullable: nullable()},
				{Name: "song_id", Type: "varchar", References: Songs + "(song_id)", Nullable: nullable()},
				{Name: "artist_id", Type: "varchar", References: Artists + "(artist_id)", Nullable: nullable()},
				{Name: "location", Type: "varchar", Nullable: nullable()},
				{Name: "session_id", Type: "integer", Nullable: nullable()},
				{Name: "user_agent", Type: "varchar", Nullable: nullable()},
			},
			Constraints: []storage.ConstraintSpec{
				pk("songplay_id"),
				{
					Kind:       storage.ConstraintForeignKey,
					Columns:    []string{"user_id", "level"},
					RefTable:   Users,
					RefColumns: []string{"user_id", "level"},
				},
				nonNegative(Songplays, "session_id"),
			},
		},
	}
}

// Table returns the TableSpec called name from StarSchema.
func Table(name string) (storage.TableSpec, bool) {
	for _, t := range StarSchema() {
		if t.Name == name {
			return t, true
		}
	}
	return storage.TableSpec{}, false
}
