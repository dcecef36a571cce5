/*
Package normcache provides a normalized object cache on top of a pluggable
key-value storage backend.

Nested results coming back from a query layer are decomposed into flat
records connected by references, each record addressable by a stable entity
key. Records are persisted to the backing Storage on every write and read
back on demand, so a cache constructed over a pre-populated storage serves
reads without any network fetch.


The purpose of this package

This package has three main objectives.

	1. Normalize nested results into flat records so the same entity written
	   by two different queries is stored exactly once.
	2. Mirror every record to an external Storage through a Codec, so cache
	   contents survive the process and can be restored as a snapshot.
	3. Track, per read, the set of entity keys the read consulted, so a later
	   write invalidates exactly the reads that depend on the written record.


Basic usage

Create a Cache with one of the storage backends.

	storage := memstorage.New()
	cache, err := normcache.New(storage)
	if err != nil {
		// nil storage is a construction failure
	}

	plan := &normcache.Plan{Selections: []normcache.Selection{{Name: "field"}}}
	err = cache.Write(ctx, plan, map[string]interface{}{"field": "simple value"})
	res, err := cache.Read(ctx, "read-1", plan)

Read never treats missing data as an error. The Missing list on the Result
names the paths that could not be served; the caller decides whether to go
to the network and write the fetched data back.

Storage backends live in the storage directory: memstorage (in-process map),
redisstorage (redis via redigo), memcachestorage (memcached), badgerstorage
(embedded BadgerDB), and storagelog which wraps any of them with operation
logging.


Invalidation

A read performed with a non-empty readID registers a dependency set. Any
Write, Evict or ClearAll that touches a key in that set reports the readID
to every registered StaleHandler. The query layer owning the read decides
when to recompute; this package never schedules anything.
*/
package normcache
