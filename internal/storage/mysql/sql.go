package mysql

const insertPredictionSQL = `
INSERT INTO predictions
  (id, label, prob_not_canceled, prob_canceled, input, created_at)
VALUES
  (?, ?, ?, ?, ?, ?)
`

// Newest first; id breaks ties between rows written in the same microsecond.
const listPredictionsSQL = `
SELECT id, label, prob_not_canceled, prob_canceled, input, created_at
FROM predictions
ORDER BY created_at DESC, id DESC
LIMIT ?
`
