/*Package interval implements interval-union operations over genomic
  coordinates, used to restrict processing to target regions given as region
  strings or BED files.  Overlapping intervals are merged, not tracked
  separately.  Every position is assumed to fit in a PosType.
*/
package interval
