package store

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/richard-senior/matchcast/internal/logger"
)

// Persistable is implemented by every type the store can save. Columns come from the
// struct tags column, dbtype, primary and index. Fields with persist:"false" or db:"-"
// are skipped.
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]interface{}
	SetPrimaryKey(map[string]interface{}) error
	BeforeSave() error
	AfterSave() error
	BeforeDelete() error
	AfterDelete() error
}

// ErrNotFound is returned by FindByPrimaryKey when no row matches
var ErrNotFound = errors.New("record not found")

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// CreateTable creates a table for the given persistable object using struct tags
func (s *Store) CreateTable(obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)

	logger.Debug("Creating table with SQL", createSQL)

	if _, err := s.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, query := range generateIndexSQL(obj, tableName) {
		logger.Debug("Creating index with SQL", query)
		if _, err := s.db.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}

	logger.Debug("Table ready", tableName)
	return nil
}

type fieldInfo struct {
	index   int
	column  string
	dbType  string
	primary bool
	indexed bool
}

// persistedFields lists the struct fields that map to columns, in declaration order
func persistedFields(t reflect.Type) []fieldInfo {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var fields []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Tag.Get("persist") == "false" || field.Tag.Get("db") == "-" {
			continue
		}
		dbType := field.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}
		columnName := field.Tag.Get("column")
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}
		fields = append(fields, fieldInfo{
			index:   i,
			column:  columnName,
			dbType:  dbType,
			primary: field.Tag.Get("primary") == "true",
			indexed: field.Tag.Get("index") != "",
		})
	}
	return fields
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj interface{}, tableName string) string {
	var columns []string
	var primaryKeys []string

	for _, f := range persistedFields(reflect.TypeOf(obj)) {
		dbType := f.dbType
		if f.primary {
			primaryKeys = append(primaryKeys, f.column)
			dbType = strings.TrimSpace(strings.ReplaceAll(dbType, "PRIMARY KEY", ""))
		}
		columns = append(columns, fmt.Sprintf("%s %s", f.column, dbType))
	}

	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj interface{}, tableName string) []string {
	var indexSQL []string
	for _, f := range persistedFields(reflect.TypeOf(obj)) {
		if !f.indexed {
			continue
		}
		indexName := fmt.Sprintf("idx_%s_%s", tableName, f.column)
		indexSQL = append(indexSQL,
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName, tableName, f.column))
	}
	return indexSQL
}

// Save persists the object (INSERT or UPDATE)
func (s *Store) Save(obj Persistable) error {
	return s.save(s.db, obj)
}

func (s *Store) save(q querier, obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	exists, err := s.exists(q, obj)
	if err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}

	if exists {
		err = s.update(q, obj)
	} else {
		err = s.insert(q, obj)
	}
	if err != nil {
		return err
	}

	if err := obj.AfterSave(); err != nil {
		return fmt.Errorf("after save hook failed: %w", err)
	}
	return nil
}

func (s *Store) insert(q querier, obj Persistable) error {
	tableName := obj.GetTableName()
	value := reflect.Indirect(reflect.ValueOf(obj))

	var columns, placeholders []string
	var values []interface{}
	for _, f := range persistedFields(value.Type()) {
		columns = append(columns, f.column)
		placeholders = append(placeholders, "?")
		values = append(values, value.Field(f.index).Interface())
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	logger.Debug("Insert SQL", query)

	if _, err := q.Exec(s.rebind(query), values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

func (s *Store) update(q querier, obj Persistable) error {
	tableName := obj.GetTableName()
	value := reflect.Indirect(reflect.ValueOf(obj))

	var setPairs []string
	var values []interface{}
	for _, f := range persistedFields(value.Type()) {
		if f.primary {
			continue
		}
		setPairs = append(setPairs, fmt.Sprintf("%s = ?", f.column))
		values = append(values, value.Field(f.index).Interface())
	}
	if len(setPairs) == 0 {
		return nil
	}

	whereClause, whereValues := buildWhereClause(obj.GetPrimaryKey())
	values = append(values, whereValues...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableName, strings.Join(setPairs, ", "), whereClause)

	logger.Debug("Update SQL", query)

	if _, err := q.Exec(s.rebind(query), values...); err != nil {
		return fmt.Errorf("failed to update %s: %w", tableName, err)
	}
	return nil
}

// Exists checks if the object exists in the database
func (s *Store) Exists(obj Persistable) (bool, error) {
	return s.exists(s.db, obj)
}

func (s *Store) exists(q querier, obj Persistable) (bool, error) {
	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", tableName, whereClause)

	var count int
	if err := q.QueryRow(s.rebind(query), values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", tableName, err)
	}
	return count > 0, nil
}

// Delete removes the object from the database
func (s *Store) Delete(obj Persistable) error {
	if err := obj.BeforeDelete(); err != nil {
		return fmt.Errorf("before delete hook failed: %w", err)
	}

	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, whereClause)

	if _, err := s.db.Exec(s.rebind(query), values...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", tableName, err)
	}

	if err := obj.AfterDelete(); err != nil {
		return fmt.Errorf("after delete hook failed: %w", err)
	}
	return nil
}

// FindByPrimaryKey loads the row with the given key into obj
func (s *Store) FindByPrimaryKey(obj Persistable, primaryKey map[string]interface{}) error {
	tableName := obj.GetTableName()
	columns, destinations := selectTargets(obj)
	whereClause, values := buildWhereClause(primaryKey)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)

	logger.Debug("FindByPrimaryKey SQL", query)

	err := s.db.QueryRow(s.rebind(query), values...).Scan(destinations...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", tableName, ErrNotFound)
		}
		return fmt.Errorf("failed to scan row from %s: %w", tableName, err)
	}
	return nil
}

// FindAll retrieves all records of the given type
func (s *Store) FindAll(obj Persistable) ([]interface{}, error) {
	return s.FindWhere(obj, "1 = 1")
}

// FindWhere executes a custom WHERE query. The clause may end with ORDER BY or LIMIT.
func (s *Store) FindWhere(obj Persistable, whereClause string, args ...interface{}) ([]interface{}, error) {
	tableName := obj.GetTableName()
	columns, _ := selectTargets(obj)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)

	logger.Debug("FindWhere SQL", query)

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var results []interface{}
	for rows.Next() {
		newObj := reflect.New(objType).Interface()
		_, destinations := selectTargets(newObj)
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, newObj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

// selectTargets returns column names and scan destinations for SELECT
func selectTargets(obj interface{}) ([]string, []interface{}) {
	value := reflect.Indirect(reflect.ValueOf(obj))
	var columns []string
	var destinations []interface{}
	for _, f := range persistedFields(value.Type()) {
		columns = append(columns, f.column)
		destinations = append(destinations, value.Field(f.index).Addr().Interface())
	}
	return columns, destinations
}

// BulkSave saves multiple objects in one transaction
func (s *Store) BulkSave(objects []Persistable) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objects {
		if err := s.save(tx, obj); err != nil {
			return fmt.Errorf("failed to save object: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// buildWhereClause builds a WHERE clause from a primary key map. Columns are sorted so
// the generated SQL is stable.
func buildWhereClause(primaryKey map[string]interface{}) (string, []interface{}) {
	keys := make([]string, 0, len(primaryKey))
	for column := range primaryKey {
		keys = append(keys, column)
	}
	sort.Strings(keys)

	var conditions []string
	var values []interface{}
	for _, column := range keys {
		conditions = append(conditions, fmt.Sprintf("%s = ?", column))
		values = append(values, primaryKey[column])
	}
	return strings.Join(conditions, " AND "), values
}
