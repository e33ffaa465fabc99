package db

const planColumns = `id, name, business_idea, industry, country, budget, full_content, content_hash, status, is_demo, is_example, generated_at`

const GetPlan = `
SELECT ` + planColumns + `
FROM business_plans
WHERE id = $1`

const ListPlans = `
SELECT ` + planColumns + `
FROM business_plans
ORDER BY generated_at DESC, id
LIMIT $1`

const UpsertPlan = `
INSERT INTO business_plans (` + planColumns + `, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    business_idea = EXCLUDED.business_idea,
    industry = EXCLUDED.industry,
    country = EXCLUDED.country,
    budget = EXCLUDED.budget,
    full_content = EXCLUDED.full_content,
    content_hash = EXCLUDED.content_hash,
    status = EXCLUDED.status,
    is_demo = EXCLUDED.is_demo,
    is_example = EXCLUDED.is_example,
    generated_at = EXCLUDED.generated_at,
    updated_at = now()`

const UpdatePlanContent = `
UPDATE business_plans
SET full_content = $2, content_hash = $3, status = $4, updated_at = now()
WHERE id = $1`

const UpdatePlanStatus = `
UPDATE business_plans
SET status = $2, updated_at = now()
WHERE id = $1`

const ListPendingPlans = `
SELECT ` + planColumns + `
FROM business_plans
WHERE status = 'pending' AND generated_at < $1
ORDER BY generated_at, id
LIMIT $2`
