// Package mysql provides the MySQL/MariaDB engine, on top of
// go-sql-driver.
//
// Explicit transactions run at the serializable isolation level and
// forward the read-only attribute to the server (START TRANSACTION
// READ ONLY). A lock wait timeout is reported as a collision, the same
// way a deadlock is: under serializable isolation both mean another
// transaction got in the way, and the caller retries the whole unit of
// work.
//
// Extra session variables (for instance innodb_lock_wait_timeout) go
// through Connection.Params and are appended to the DSN, where
// go-sql-driver applies them with SET on connect.
package mysql
