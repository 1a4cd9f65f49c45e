// Package datastore persists deployment metadata for a destination: the
// current and previous deployment records, the file state map of each
// deployment and the location of its backups.
//
// Two backends exist. The directory store keeps everything in a hidden
// directory inside the destination, which makes a destination
// self-describing. The badger store keeps records in an embedded key-value
// database shared by many destinations and only puts backups on disk.
package datastore
